package fetch

import "encoding/json"

// CategoryCapture is one category's raw crawl result: the retailer's
// category identity plus every raw product entry collected across its
// pages. A daily snapshot archive is a JSON array of these.
type CategoryCapture struct {
	ID          string            `json:"id"`
	Description string            `json:"description,omitempty"`
	Products    []json.RawMessage `json:"products"`
}
