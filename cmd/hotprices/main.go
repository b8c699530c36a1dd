// Command hotprices is the scheduled price-tracking ingester for Australian
// grocery retailers. "sync" crawls one store's catalog into a daily capture
// archive; "analysis" reconciles captures against the canonical price
// history and writes the public dataset.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/app"
	"github.com/xenking/hotprices/internal/domain/product"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "hotprices",
		Short:         "Grocery price tracking ingester",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentFlags().String("output-dir", "", "directory for capture archives and the canonical history file")
	root.PersistentFlags().String("data-dir", "", "directory for public per-store data exports")

	root.AddCommand(syncCmd(&debug), analysisCmd(&debug))
	return root
}

// newLogger builds the process logger with a per-run correlation id.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return lg.With(zap.String("run_id", uuid.NewString())), nil
}

// loadConfig loads the configuration and applies the directory flag
// overrides. Flags win over environment and file values.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	return cfg, nil
}

func syncCmd(debug *bool) *cobra.Command {
	var opts app.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync <store>",
		Short: "Crawl a store's catalog into a daily capture archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := product.ParseStore(args[0])
			if err != nil {
				return err
			}

			lg, err := newLogger(*debug)
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := app.Sync(cfg, lg, store, opts); err != nil {
				lg.Error("sync failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Quick, "quick", false, "fetch only the first page of each category")
	cmd.Flags().BoolVar(&opts.PrintSavePath, "print-save-path", false, "print the archive path and exit")
	cmd.Flags().BoolVar(&opts.SkipExisting, "skip-existing", false, "do nothing if the day's archive already exists")
	return cmd
}

func analysisCmd(debug *bool) *cobra.Command {
	var (
		dayFlag   string
		storeFlag string
		compress  bool
		history   bool
	)

	cmd := &cobra.Command{
		Use:   "analysis",
		Short: "Reconcile capture archives against the canonical price history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.AnalysisOptions{
				Day:      product.Today(),
				Compress: compress,
				Rebuild:  history,
			}
			if dayFlag != "" {
				day, err := product.ParseDate(dayFlag)
				if err != nil {
					return err
				}
				opts.Day = day
			}
			if storeFlag != "" {
				store, err := product.ParseStore(storeFlag)
				if err != nil {
					return err
				}
				opts.Store = store
			}

			lg, err := newLogger(*debug)
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if err := app.Analysis(cfg, lg, opts); err != nil {
				lg.Error("analysis failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dayFlag, "day", "", "capture date to reconcile (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&storeFlag, "store", "", "restrict the run to one store")
	cmd.Flags().BoolVar(&compress, "compress", false, "gzip the public data exports")
	cmd.Flags().BoolVar(&history, "history", false, "rebuild the full history from every archived day")
	return cmd
}
