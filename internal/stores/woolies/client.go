// Package woolies crawls the Woolworths catalog API and converts its raw
// bundles into canonical product snapshots. Category pages are served by a
// JSON POST endpoint; no bootstrap credentials are needed.
package woolies

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/fetch"
)

const (
	baseURL  = "https://www.woolworths.com.au"
	referer  = baseURL + "/shop/browse/fruit-veg"
	pageSize = 36
)

// ClientConfig carries the HTTP settings for the Woolworths client.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
	Retry     fetch.RetryPolicy
}

// Client is the Woolworths HTTP client. The API expects browser-like
// headers and a primed cookie jar, which resty maintains automatically.
type Client struct {
	http  *resty.Client
	retry fetch.RetryPolicy
	lg    *zap.Logger
}

// NewClient creates a Woolworths client.
func NewClient(cfg ClientConfig, lg *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Origin", baseURL).
		SetHeader("Referer", referer)

	return &Client{http: http, retry: cfg.Retry, lg: lg}
}

// Start primes the session cookies by loading the storefront once.
func (c *Client) Start() error {
	_, err := c.get(baseURL)
	return err
}

func (c *Client) get(url string) (string, error) {
	return c.retry.Do(c.lg, func() (string, error) {
		c.lg.Debug("loading url", zap.String("url", url))
		res, err := c.http.R().Get(url)
		if err != nil {
			return "", err
		}
		if res.IsError() {
			return "", errors.Errorf("GET %s: status %s", url, res.Status())
		}
		return res.String(), nil
	})
}

// GetCategories fetches the category list.
func (c *Client) GetCategories() (string, error) {
	return c.get(baseURL + "/apis/ui/PiesCategoriesWithSpecials")
}

// GetCategoryPage fetches one page of a category's products.
func (c *Client) GetCategoryPage(id string, page int) (string, error) {
	url := baseURL + "/apis/ui/browse/category"
	payload := map[string]any{
		"categoryId":                id,
		"pageNumber":                page,
		"pageSize":                  pageSize,
		"sortType":                  "Name",
		"url":                       "/shop/browse/fruit-veg",
		"location":                  "/shop/browse/fruit-veg",
		"formatObject":              `{"name":"Fruit & Veg"}`,
		"isSpecial":                 false,
		"isBundle":                  false,
		"isMobile":                  false,
		"filters":                   []map[string]any{{"Items": []map[string]string{{"Term": "Woolworths"}}, "Key": "SoldBy"}},
		"token":                     "",
		"gpBoost":                   0,
		"isHideUnavailableProducts": false,
		"enableAdReRanking":         false,
		"groupEdmVariants":          true,
		"categoryVersion":           "v2",
	}

	return c.retry.Do(c.lg, func() (string, error) {
		c.lg.Debug("loading url", zap.String("url", url), zap.Int("page", page))
		res, err := c.http.R().SetBody(payload).Post(url)
		if err != nil {
			return "", err
		}
		if res.IsError() {
			return "", errors.Errorf("POST %s: status %s", url, res.Status())
		}
		return res.String(), nil
	})
}
