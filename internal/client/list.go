// Package client – record listing.
//
// List results come back as a lazily-paged iterator over summaries. The
// iterator is finite and restartable: calling List again with the same
// filter yields a fresh snapshot from page zero. No cursor state is kept
// across iterators.
package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pcosta/go-intake-backend/internal/domain"
)

// ListFilter narrows a listing. The zero value lists everything owned by
// the calling agent.
type ListFilter struct {
	// Status restricts to one lifecycle state when non-empty.
	Status domain.Status
	// Search is a free-text term matched server-side against client
	// name, address, and cadastral article.
	Search string
	// PageSize is the number of summaries fetched per request; values
	// outside (0, maxPageSize] fall back to the default.
	PageSize int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListIterator walks a listing page by page. Usage follows the rows
// pattern:
//
//	it := lc.List(client.ListFilter{Status: domain.StatusDraft})
//	for it.Next(ctx) {
//	    s := it.Summary()
//	    …
//	}
//	if err := it.Err(); err != nil { … }
//
// ListIterator is not safe for concurrent use.
type ListIterator struct {
	c      *Lifecycle
	filter ListFilter

	skip int
	buf  []Summary
	pos  int
	done bool
	err  error
}

// List returns a fresh iterator for the given filter.
func (c *Lifecycle) List(f ListFilter) *ListIterator {
	if f.PageSize <= 0 || f.PageSize > maxPageSize {
		f.PageSize = defaultPageSize
	}
	return &ListIterator{c: c, filter: f}
}

// Next advances to the next summary, fetching the next page when the
// buffered one is exhausted. It returns false at the end of the listing
// or on error; check Err after the loop.
func (it *ListIterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if it.pos < len(it.buf) {
		it.pos++
		return true
	}
	if it.done {
		return false
	}

	page, err := it.fetch(ctx)
	if err != nil {
		it.err = err
		return false
	}
	if len(page) < it.filter.PageSize {
		// Short page: the listing ends here.
		it.done = true
	}
	if len(page) == 0 {
		return false
	}
	it.buf = page
	it.pos = 1
	it.skip += len(page)
	return true
}

// Summary returns the summary Next advanced to.
func (it *ListIterator) Summary() Summary { return it.buf[it.pos-1] }

// Err returns the first error encountered while iterating, if any.
func (it *ListIterator) Err() error { return it.err }

// fetch retrieves one page of summaries.
func (it *ListIterator) fetch(ctx context.Context) ([]Summary, error) {
	q := url.Values{}
	if it.filter.Status != "" {
		q.Set("status", string(it.filter.Status))
	}
	if it.filter.Search != "" {
		q.Set("search", it.filter.Search)
	}
	q.Set("skip", strconv.Itoa(it.skip))
	q.Set("limit", strconv.Itoa(it.filter.PageSize))

	var page []Summary
	if err := it.c.do(ctx, http.MethodGet, "/first-impressions?"+q.Encode(), nil, nil, &page); err != nil {
		return nil, err
	}
	return page, nil
}
