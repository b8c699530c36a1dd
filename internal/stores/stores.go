// Package stores selects the retailer-specific crawl and conversion
// implementation for a store. Each retailer has its own endpoints and raw
// JSON shape but produces the same canonical snapshots; dispatch happens on
// the store enum at the point where a store is known.
package stores

import (
	"encoding/json"
	"io"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/conversion"
	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/fetch"
	"github.com/xenking/hotprices/internal/stores/coles"
	"github.com/xenking/hotprices/internal/stores/woolies"
)

// CategoryCapture is one category's raw crawl result as archived in a daily
// snapshot file: the retailer's category identity plus every raw product
// entry collected across its pages.
type CategoryCapture = fetch.CategoryCapture

// ClientConfig carries the HTTP settings shared by all store clients.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
	Retry     fetch.RetryPolicy
}

// Crawler fetches a retailer's full catalog through the day's cache.
type Crawler interface {
	Store() product.Store
	// Crawl walks every category sequentially and returns the raw capture.
	// Quick mode stops after the first page of each category.
	Crawl(quick bool) ([]CategoryCapture, error)
}

// NewCrawler builds the crawler for the given store.
func NewCrawler(store product.Store, cache *fetch.DiskCache, cfg ClientConfig, lg *zap.Logger) (Crawler, error) {
	switch store {
	case product.StoreColes:
		return coles.NewCrawler(cache, coles.ClientConfig(cfg), lg), nil
	case product.StoreWoolies:
		return woolies.NewCrawler(cache, woolies.ClientConfig(cfg), lg), nil
	default:
		return nil, errors.Errorf("no crawler for store %q", store)
	}
}

// LoadSnapshot decodes a store's archived daily capture and converts it into
// canonical snapshots for the given date.
func LoadSnapshot(store product.Store, r io.Reader, date product.Date, lg *zap.Logger) ([]product.Snapshot, error) {
	var captures []CategoryCapture
	if err := json.NewDecoder(r).Decode(&captures); err != nil {
		return nil, errors.Wrapf(err, "decode %s capture", store)
	}

	dec, err := itemDecoder(store)
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	for _, c := range captures {
		if filtered(store, c) {
			continue
		}
		raws = append(raws, c.Products...)
	}
	if store == product.StoreWoolies {
		// Woolworths pages group variants into bundles; conversion operates
		// on individual products.
		raws = woolies.FlattenBundles(raws)
	}

	snapshots, _, err := conversion.Snapshots(dec, raws, date, lg)
	return snapshots, err
}

func itemDecoder(store product.Store) (conversion.ItemDecoder, error) {
	switch store {
	case product.StoreColes:
		return coles.Decoder{}, nil
	case product.StoreWoolies:
		return woolies.Decoder{}, nil
	default:
		return nil, errors.Errorf("no decoder for store %q", store)
	}
}

// filtered re-applies the retailer's category filters at load time, so
// captures taken before a filter was added still convert cleanly.
func filtered(store product.Store, c CategoryCapture) bool {
	switch store {
	case product.StoreColes:
		return coles.CategoryFiltered(c.ID)
	case product.StoreWoolies:
		return woolies.CategoryFiltered(c.ID, c.Description)
	default:
		return false
	}
}
