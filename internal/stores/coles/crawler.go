package coles

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/fetch"
)

// skipCategories are storefront pseudo-categories (promo pages) that contain
// no stable catalog products.
var skipCategories = map[string]struct{}{
	"down-down":      {},
	"back-to-school": {},
}

// CategoryFiltered reports whether a category slug is excluded from the
// catalog crawl and from snapshot conversion.
func CategoryFiltered(slug string) bool {
	_, skip := skipCategories[slug]
	return skip
}

type categoryList struct {
	CatalogGroupView []struct {
		SeoToken string `json:"seoToken"`
	} `json:"catalogGroupView"`
}

// categoryPage is the Next.js data payload wrapping one page of search
// results.
type categoryPage struct {
	PageProps struct {
		SearchResults struct {
			Results     []json.RawMessage `json:"results"`
			NoOfResults int64             `json:"noOfResults"`
		} `json:"searchResults"`
	} `json:"pageProps"`
}

// Crawler walks the Coles catalog sequentially, one category at a time,
// fetching every page through the day's disk cache.
type Crawler struct {
	client *Client
	cache  *fetch.DiskCache
	lg     *zap.Logger
}

// NewCrawler builds a Coles crawler on top of the given cache.
func NewCrawler(cache *fetch.DiskCache, cfg ClientConfig, lg *zap.Logger) *Crawler {
	return &Crawler{
		client: NewClient(cfg, lg),
		cache:  cache,
		lg:     lg,
	}
}

// Store implements stores.Crawler.
func (c *Crawler) Store() product.Store {
	return product.StoreColes
}

// Crawl fetches the setup credentials, the category list, and then every
// category's pages, returning the raw capture for archiving.
func (c *Crawler) Crawl(quick bool) ([]fetch.CategoryCapture, error) {
	c.lg.Info("starting fetch for coles")

	client, err := c.versionedClient()
	if err != nil {
		return nil, errors.Wrap(err, "set up versioned client")
	}

	slugs, err := c.categorySlugs(client)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}
	c.lg.Info("loaded categories", zap.Int("count", len(slugs)))

	captures := make([]fetch.CategoryCapture, 0, len(slugs))
	for _, slug := range slugs {
		capture, err := c.crawlCategory(client, slug, quick)
		if err != nil {
			return nil, errors.Wrapf(err, "crawl category %s", slug)
		}
		captures = append(captures, capture)
	}
	return captures, nil
}

// versionedClient resolves the API key and build id from the cached index
// page and returns a client that can fetch category pages.
func (c *Crawler) versionedClient() (*Client, error) {
	html, err := c.cache.GetOrFetch("index.html", c.client.GetSetupData)
	if err != nil {
		return nil, err
	}
	apiKey, version, err := parseSetupData(html)
	if err != nil {
		return nil, err
	}
	return c.client.WithSetup(apiKey, version), nil
}

func (c *Crawler) categorySlugs(client *Client) ([]string, error) {
	body, err := c.cache.GetOrFetch("categories.json", client.GetCategories)
	if err != nil {
		return nil, err
	}
	var list categoryList
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		return nil, errors.Wrap(err, "decode category list")
	}

	var slugs []string
	for _, cat := range list.CatalogGroupView {
		if CategoryFiltered(cat.SeoToken) {
			continue
		}
		slugs = append(slugs, cat.SeoToken)
	}
	return slugs, nil
}

func (c *Crawler) crawlCategory(client *Client, slug string, quick bool) (fetch.CategoryCapture, error) {
	capture := fetch.CategoryCapture{ID: slug}

	it := fetch.NewIterator(func(page int) (fetch.Page, error) {
		key := fmt.Sprintf("categories/%s/page_%d.json", slug, page)
		body, err := c.cache.GetOrFetch(key, func() (string, error) {
			return client.GetCategoryPage(slug, page)
		})
		if err != nil {
			return fetch.Page{}, err
		}
		return decodePage(body, quick)
	})

	for it.Next() {
		capture.Products = append(capture.Products, it.Item())
	}
	if err := it.Err(); err != nil {
		return fetch.CategoryCapture{}, err
	}

	c.lg.Debug("category crawled",
		zap.String("slug", slug),
		zap.Int("products", len(capture.Products)),
	)
	return capture, nil
}

// decodePage parses one category page. Quick mode reports the page as the
// whole category so the iterator stops after it.
func decodePage(body string, quick bool) (fetch.Page, error) {
	var page categoryPage
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		return fetch.Page{}, errors.Wrap(err, "decode category page")
	}

	results := page.PageProps.SearchResults
	total := results.NoOfResults
	if quick {
		total = int64(len(results.Results))
	}
	return fetch.Page{Items: results.Results, Total: total}, nil
}
