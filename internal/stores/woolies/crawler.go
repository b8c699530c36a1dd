package woolies

import (
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/hotprices/internal/domain/product"
	"github.com/xenking/hotprices/internal/fetch"
)

// CategoryFiltered reports whether a category is excluded from the crawl:
// specials aggregations, front-of-store promos, and the liquor catalog.
func CategoryFiltered(nodeID, description string) bool {
	if nodeID == "specialsgroup" || nodeID == "1_8E4DA6F" {
		return true
	}
	return description == "Front of Store" || description == "Beer, Wine & Spirits"
}

type categoryList struct {
	Categories []struct {
		NodeID      string `json:"NodeId"`
		Description string `json:"Description"`
	} `json:"Categories"`
}

// categoryPage is one page of a category's browse response.
type categoryPage struct {
	Bundles          []json.RawMessage `json:"Bundles"`
	TotalRecordCount int64             `json:"TotalRecordCount"`
}

// Crawler walks the Woolworths catalog sequentially through the day's disk
// cache.
type Crawler struct {
	client *Client
	cache  *fetch.DiskCache
	lg     *zap.Logger
}

// NewCrawler builds a Woolworths crawler on top of the given cache.
func NewCrawler(cache *fetch.DiskCache, cfg ClientConfig, lg *zap.Logger) *Crawler {
	return &Crawler{
		client: NewClient(cfg, lg),
		cache:  cache,
		lg:     lg,
	}
}

// Store implements stores.Crawler.
func (c *Crawler) Store() product.Store {
	return product.StoreWoolies
}

// Crawl fetches the category list and then every category's pages,
// returning the raw capture for archiving.
func (c *Crawler) Crawl(quick bool) ([]fetch.CategoryCapture, error) {
	c.lg.Info("starting fetch for woolies")

	if err := c.client.Start(); err != nil {
		return nil, errors.Wrap(err, "prime session")
	}

	body, err := c.cache.GetOrFetch("categories.json", c.client.GetCategories)
	if err != nil {
		return nil, errors.Wrap(err, "load categories")
	}
	var list categoryList
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		return nil, errors.Wrap(err, "decode category list")
	}

	var captures []fetch.CategoryCapture
	for _, cat := range list.Categories {
		if CategoryFiltered(cat.NodeID, cat.Description) {
			continue
		}
		capture, err := c.crawlCategory(cat.NodeID, cat.Description, quick)
		if err != nil {
			return nil, errors.Wrapf(err, "crawl category %s", cat.NodeID)
		}
		captures = append(captures, capture)
	}
	c.lg.Info("crawl finished", zap.Int("categories", len(captures)))
	return captures, nil
}

func (c *Crawler) crawlCategory(id, description string, quick bool) (fetch.CategoryCapture, error) {
	capture := fetch.CategoryCapture{ID: id, Description: description}

	it := fetch.NewIterator(func(page int) (fetch.Page, error) {
		key := fmt.Sprintf("categories/%s/page_%d.json", id, page)
		body, err := c.cache.GetOrFetch(key, func() (string, error) {
			return c.client.GetCategoryPage(id, page)
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
		zap.String("id", id),
		zap.String("description", description),
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

	total := page.TotalRecordCount
	if quick {
		total = int64(len(page.Bundles))
	}
	return fetch.Page{Items: page.Bundles, Total: total}, nil
}
