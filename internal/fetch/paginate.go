package fetch

import "encoding/json"

// Page is one decoded catalog page: its raw product entries and the total
// record count the API claims for the whole category.
type Page struct {
	Items []json.RawMessage
	Total int64
}

// PageFunc fetches and decodes one category page. Page numbers start at 1.
type PageFunc func(page int) (Page, error)

// Iterator walks a category's products lazily, one cached page fetch per
// buffer exhaustion. It is single-pass and not restartable; iterating a
// category again requires a new Iterator.
//
// Usage follows the bufio.Scanner pattern:
//
//	for it.Next() {
//	    raw := it.Item()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	fetch PageFunc

	buf      []json.RawMessage
	cur      json.RawMessage
	page     int
	count    int64
	finished bool
	err      error
}

// NewIterator creates an iterator positioned before the first item.
func NewIterator(fetch PageFunc) *Iterator {
	return &Iterator{fetch: fetch, page: 1}
}

// Next advances to the next product, fetching the next page when the buffer
// runs dry. It returns false when the category is exhausted or a page fetch
// failed; the two cases are distinguished by Err.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}

	if len(it.buf) == 0 && !it.finished {
		page, err := it.fetch(it.page)
		if err != nil {
			// A mid-sequence failure is fatal for the category, not
			// end-of-sequence.
			it.err = err
			return false
		}

		it.buf = page.Items
		it.count += int64(len(page.Items))
		it.page++

		// The API is known to over-report totals relative to deliverable
		// items, so an empty page also terminates; testing only the running
		// count against Total would loop forever on such categories.
		if it.count >= page.Total || len(page.Items) == 0 {
			it.finished = true
		}
	}

	if len(it.buf) == 0 {
		return false
	}
	it.cur = it.buf[0]
	it.buf = it.buf[1:]
	return true
}

// Item returns the raw product entry positioned by the last Next call.
func (it *Iterator) Item() json.RawMessage {
	return it.cur
}

// Err returns the page-fetch error that halted iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}
