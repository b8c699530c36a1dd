package woolies

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/hotprices/internal/domain/product"
)

// minDerivedQuantity is the sanity floor for quantities derived from the
// cup-price ratio. A lower value indicates a unit-family mismatch between
// the item price and the cup measure, not a truly small product.
const minDerivedQuantity = 10

// bundle groups product variants in a category page entry.
type bundle struct {
	Products []json.RawMessage `json:"Products"`
}

// FlattenBundles expands raw bundle entries into their individual products.
// An entry that does not decode as a bundle is passed through unchanged so
// it is counted as a conversion failure downstream instead of being lost.
func FlattenBundles(raws []json.RawMessage) []json.RawMessage {
	flattened := make([]json.RawMessage, 0, len(raws))
	for _, raw := range raws {
		var b bundle
		if err := json.Unmarshal(raw, &b); err != nil || b.Products == nil {
			flattened = append(flattened, raw)
			continue
		}
		flattened = append(flattened, b.Products...)
	}
	return flattened
}

// bundleProduct is the raw per-product shape inside a bundle.
type bundleProduct struct {
	Stockcode   int64    `json:"Stockcode"`
	Name        string   `json:"Name"`
	Description string   `json:"Description"`
	Price       *float64 `json:"Price"`
	WasPrice    float64  `json:"WasPrice"`
	IsInStock   bool     `json:"IsInStock"`
	PackageSize string   `json:"PackageSize"`
	CupPrice    *float64 `json:"CupPrice"`
	CupMeasure  string   `json:"CupMeasure"`
	Unit        string   `json:"Unit"`
}

// Decoder converts raw Woolworths bundle products into canonical snapshots.
type Decoder struct{}

// Store implements conversion.ItemDecoder.
func (Decoder) Store() product.Store {
	return product.StoreWoolies
}

// Decode maps one bundle product into a snapshot.
func (Decoder) Decode(raw json.RawMessage, date product.Date) (product.Snapshot, error) {
	var item bundleProduct
	if err := json.Unmarshal(raw, &item); err != nil {
		return product.Snapshot{}, product.NewConversionError("decode bundle product: %s", err)
	}
	return item.snapshot(date)
}

func (p bundleProduct) snapshot(date product.Date) (product.Snapshot, error) {
	price, err := p.currentPrice()
	if err != nil {
		return product.Snapshot{}, err
	}

	var quantity float64
	var unit product.Unit
	if p.CupMeasure == "1EA" {
		quantity, unit = 1, product.UnitEach
	} else {
		quantity, unit, err = p.quantityAndUnit(price)
		if err != nil {
			return product.Snapshot{}, err
		}
	}

	info := product.Info{
		ID:          p.Stockcode,
		Name:        p.Name,
		Description: p.Description,
		IsWeighted:  false,
		Unit:        unit,
		Quantity:    quantity,
		Store:       product.StoreWoolies,
	}
	return product.NewSnapshot(info, price, date), nil
}

// currentPrice returns the listed price, falling back to the pre-sale price
// for out-of-stock items that still carry one.
func (p bundleProduct) currentPrice() (product.Price, error) {
	if p.Price != nil {
		return product.PriceFromDollars(*p.Price), nil
	}
	if !p.IsInStock && p.WasPrice > 0 {
		return product.PriceFromDollars(p.WasPrice), nil
	}
	return 0, product.NewConversionError("missing price on %s", p.Name)
}

// quantityAndUnit parses the package size, falling back to the standardized
// cup price/measure ratio when the size text does not parse.
func (p bundleProduct) quantityAndUnit(price product.Price) (float64, product.Unit, error) {
	if q, u, err := product.ParseUnit(p.PackageSize); err == nil {
		return q, u, nil
	}

	if strings.EqualFold(p.Unit, "each") && strings.EqualFold(p.PackageSize, "each") {
		return 1, product.UnitEach, nil
	}

	if p.CupMeasure == "" {
		return 0, "", product.NewConversionError("missing cup measure, ran out of options to convert")
	}
	stdQuantity, unit, err := product.ParseUnit(p.CupMeasure)
	if err != nil {
		return 0, "", err
	}

	if p.CupPrice == nil {
		return 0, "", product.NewConversionError("missing cup price, unable to calculate quantity")
	}
	cupPrice := decimal.NewFromFloat(*p.CupPrice)
	if cupPrice.IsZero() {
		return 0, "", product.NewConversionError("zero cup price, unable to calculate quantity")
	}

	derived := price.Decimal().
		Div(cupPrice).
		Mul(decimal.NewFromFloat(stdQuantity)).
		Round(0)
	quantity, _ := derived.Float64()
	if quantity < minDerivedQuantity {
		return 0, "", product.NewConversionError("low quantity %v derived for %s", quantity, p.Name)
	}
	return quantity, unit, nil
}
