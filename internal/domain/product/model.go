// Package product holds the canonical, store-agnostic product data model:
// prices in integer cents, normalized units, daily snapshots and the
// accumulating price histories that form the public dataset.
package product

// Key is the unique identity of a product within a store's catalog. It is
// stable across days and is the join key for reconciliation.
type Key struct {
	Store Store
	ID    int64
}

// PricePoint is one observed price on one calendar day. Immutable once
// created.
type PricePoint struct {
	Date  Date  `json:"date"`
	Price Price `json:"price"`
}

// Info is the descriptive metadata of a product. It always reflects the
// most recently observed snapshot and is wholesale-replaced on every merge,
// never field-merged.
type Info struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	IsWeighted  bool         `json:"isWeighted"`
	Unit        Unit         `json:"unit"`
	Quantity    float64      `json:"quantity"`
	Store       Store        `json:"store"`
	Category    CategoryCode `json:"category,omitempty"`
}

// Key returns the product's join key.
func (i Info) Key() Key {
	return Key{Store: i.Store, ID: i.ID}
}

// Snapshot is a single day's observation of one product: full metadata plus
// exactly one price point for the capture date. It is ephemeral; the merge
// consumes it and it is discarded.
type Snapshot struct {
	Info  Info
	Point PricePoint
}

// NewSnapshot pairs product metadata with the observed price for a date.
func NewSnapshot(info Info, price Price, date Date) Snapshot {
	return Snapshot{
		Info:  info,
		Point: PricePoint{Date: date, Price: price},
	}
}

// History is the persisted canonical record of one product: its latest
// metadata and a non-empty price sequence sorted by date descending with at
// most one entry per day.
type History struct {
	Info
	PriceHistory []PricePoint `json:"priceHistory"`
}

// NewHistory starts a history from a product's first observed snapshot.
func NewHistory(s Snapshot) History {
	return History{
		Info:         s.Info,
		PriceHistory: []PricePoint{s.Point},
	}
}

// Newest returns the most recent price point. The price sequence is never
// empty for a valid history.
func (h History) Newest() PricePoint {
	return h.PriceHistory[0]
}
