package coles

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/hotprices/internal/domain/product"
)

// ignoredResultTypes mark advertisement placements when paired with a
// non-null adId.
var ignoredResultTypes = map[string]struct{}{
	"SINGLE_TILE":         {},
	"CONTENT_ASSOCIATION": {},
}

// searchResult is the raw per-product shape in a category page's results.
type searchResult struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	Size        string `json:"size"`
	Pricing     *struct {
		Now  float64 `json:"now"`
		Unit struct {
			IsWeighted *bool `json:"isWeighted"`
		} `json:"unit"`
	} `json:"pricing"`
	OnlineHeirs []struct {
		Category string `json:"category"`
	} `json:"onlineHeirs"`
}

// Decoder converts raw Coles search results into canonical snapshots.
type Decoder struct{}

// Store implements conversion.ItemDecoder.
func (Decoder) Store() product.Store {
	return product.StoreColes
}

// Decode probes the entry for the advertisement marker, then decodes the
// full search result and maps it into a snapshot.
func (Decoder) Decode(raw json.RawMessage, date product.Date) (product.Snapshot, error) {
	resultType, hasAdID, err := probeResult(raw)
	if err != nil {
		return product.Snapshot{}, product.NewConversionError("probe result: %s", err)
	}
	if _, ignored := ignoredResultTypes[resultType]; ignored && hasAdID {
		return product.Snapshot{}, product.ErrAdResult
	}

	var item searchResult
	if err := json.Unmarshal(raw, &item); err != nil {
		return product.Snapshot{}, product.NewConversionError("decode search result: %s", err)
	}
	return item.snapshot(date)
}

// probeResult scans the raw entry for _type and adId without a full decode.
// _type must be present on every entry.
func probeResult(raw json.RawMessage) (resultType string, hasAdID bool, err error) {
	d := jx.DecodeBytes(raw)
	seenType := false
	err = d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "_type":
			seenType = true
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "read _type")
			}
			resultType = s
			return nil
		case "adId":
			hasAdID = d.Next() != jx.Null
			return d.Skip()
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return "", false, err
	}
	if !seenType {
		return "", false, errors.New("missing key _type")
	}
	return resultType, hasAdID, nil
}

func (r searchResult) snapshot(date product.Date) (product.Snapshot, error) {
	if r.Pricing == nil {
		return product.Snapshot{}, product.NewConversionError("missing field pricing")
	}

	name := r.Name
	if r.Brand != "" {
		name = r.Brand + " " + name
	}

	if r.Size == "" {
		return product.Snapshot{}, product.NewConversionError("empty field size")
	}
	quantity, unit, err := product.ParseUnit(r.Size)
	if err != nil {
		return product.Snapshot{}, err
	}

	var isWeighted bool
	if r.Pricing.Unit.IsWeighted != nil {
		isWeighted = *r.Pricing.Unit.IsWeighted
	}

	info := product.Info{
		ID:          r.ID,
		Name:        name,
		Description: r.Description,
		IsWeighted:  isWeighted,
		Unit:        unit,
		Quantity:    quantity,
		Store:       product.StoreColes,
		Category:    product.CategoryFromNames(r.categoryNames()),
	}
	return product.NewSnapshot(info, product.PriceFromDollars(r.Pricing.Now), date), nil
}

func (r searchResult) categoryNames() []string {
	names := make([]string, 0, len(r.OnlineHeirs))
	for _, h := range r.OnlineHeirs {
		names = append(names, h.Category)
	}
	return names
}
