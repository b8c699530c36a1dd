package coles

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
)

// nextData is the subset of the __NEXT_DATA__ bootstrap payload we need:
// the API subscription key for the bff endpoints and the Next.js build id
// that versions the category page URLs.
type nextData struct {
	RuntimeConfig struct {
		BFFAPISubscriptionKey string `json:"BFF_API_SUBSCRIPTION_KEY"`
	} `json:"runtimeConfig"`
	BuildID string `json:"buildId"`
}

// parseSetupData extracts the API key and build version from the storefront
// index HTML.
func parseSetupData(html string) (apiKey, version string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", errors.Wrap(err, "parse index html")
	}

	script := doc.Find("script#__NEXT_DATA__").First()
	if script.Length() == 0 {
		return "", "", errors.New("couldn't find __NEXT_DATA__ script in HTML")
	}

	var data nextData
	if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
		return "", "", errors.Wrap(err, "decode __NEXT_DATA__")
	}
	if data.RuntimeConfig.BFFAPISubscriptionKey == "" || data.BuildID == "" {
		return "", "", errors.New("__NEXT_DATA__ missing subscription key or build id")
	}
	return data.RuntimeConfig.BFFAPISubscriptionKey, data.BuildID, nil
}
