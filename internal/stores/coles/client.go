// Package coles crawls the Coles catalog API and converts its raw search
// results into canonical product snapshots. Category pages are served by a
// Next.js data endpoint that requires a build id and an API subscription key
// scraped from the storefront's bootstrap HTML.
package coles

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/fetch"
)

const (
	baseURL = "https://www.coles.com.au"
	storeID = "0584"
)

// ClientConfig carries the HTTP settings for the Coles client.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
	Retry     fetch.RetryPolicy
}

// Client is the Coles HTTP client. The zero version marks an unversioned
// client that can only fetch the setup page and the category list; category
// pages require WithSetup first.
type Client struct {
	http    *resty.Client
	retry   fetch.RetryPolicy
	lg      *zap.Logger
	version string
	apiKey  string
}

// NewClient creates an unversioned client with browser-like headers.
func NewClient(cfg ClientConfig, lg *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Origin", baseURL).
		SetHeader("Referer", baseURL)

	return &Client{http: http, retry: cfg.Retry, lg: lg}
}

// WithSetup returns a client authorized for category page fetches, carrying
// the scraped API subscription key and build version. The receiver keeps its
// unversioned state; the key is sent per request, never written to the
// shared resty client.
func (c *Client) WithSetup(apiKey, version string) *Client {
	versioned := *c
	versioned.apiKey = apiKey
	versioned.version = version
	return &versioned
}

// get fetches a URL through the retry policy and returns the body text.
func (c *Client) get(url string) (string, error) {
	return c.retry.Do(c.lg, func() (string, error) {
		c.lg.Debug("loading url", zap.String("url", url))
		req := c.http.R()
		if c.apiKey != "" {
			req.SetHeader("ocp-apim-subscription-key", c.apiKey)
		}
		res, err := req.Get(url)
		if err != nil {
			return "", err
		}
		if res.IsError() {
			return "", errors.Errorf("GET %s: status %s", url, res.Status())
		}
		return res.String(), nil
	})
}

// GetSetupData fetches the storefront index HTML containing the
// __NEXT_DATA__ bootstrap script.
func (c *Client) GetSetupData() (string, error) {
	return c.get(baseURL)
}

// GetCategories fetches the category list for the configured store.
func (c *Client) GetCategories() (string, error) {
	return c.get(fmt.Sprintf("%s/api/bff/products/categories?storeId=%s", baseURL, storeID))
}

// GetCategoryPage fetches one page of a category's search results.
func (c *Client) GetCategoryPage(slug string, page int) (string, error) {
	if c.version == "" {
		return "", errors.New("client version not set, call WithSetup first")
	}
	url := fmt.Sprintf("%s/_next/data/%s/en/browse/%s.json?page=%d&slug=%s",
		baseURL, c.version, slug, page, slug)
	return c.get(url)
}
