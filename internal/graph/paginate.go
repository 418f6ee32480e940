package graph

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultMaxItems bounds paginated reads when the caller passes no limit.
const DefaultMaxItems = 100

const maxPageSize = 100

// Page is the envelope of a Graph API list response.
type Page[T any] struct {
	Data   []T     `json:"data"`
	Paging *Paging `json:"paging,omitempty"`
}

// Paging carries the cursors and links of a list response.
type Paging struct {
	Cursors  *Cursors `json:"cursors,omitempty"`
	Next     string   `json:"next,omitempty"`
	Previous string   `json:"previous,omitempty"`
}

// Cursors are the opaque before/after positions of a page.
type Cursors struct {
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`
}

// AfterCursor returns the after cursor, or "" when there is none. A next link
// without an after cursor does not count.
func (p *Page[T]) AfterCursor() string {
	if p == nil || p.Paging == nil || p.Paging.Cursors == nil {
		return ""
	}
	return p.Paging.Cursors.After
}

// Collect walks cursor pagination starting at first until maxItems items are
// gathered or a page has no after cursor. The result is truncated to maxItems.
func Collect[T any](ctx context.Context, first Page[T], next func(ctx context.Context, after string) (Page[T], error), maxItems int) ([]T, error) {
	items := append([]T(nil), first.Data...)
	page := first

	for len(items) < maxItems {
		after := page.AfterCursor()
		if after == "" {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nextPage, err := next(ctx, after)
		if err != nil {
			return nil, err
		}
		items = append(items, nextPage.Data...)
		page = nextPage
	}

	if len(items) > maxItems {
		items = items[:max(maxItems, 0)]
	}
	return items, nil
}

// GetPaginated reads up to maxItems items from a list endpoint.
func GetPaginated[T any](ctx context.Context, c *Client, path string, params url.Values, maxItems int) ([]T, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}

	query := url.Values{}
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}
	if query.Get("limit") == "" {
		query.Set("limit", strconv.Itoa(min(maxItems, maxPageSize)))
	}

	var first Page[T]
	if err := c.Get(ctx, path, query, &first); err != nil {
		return nil, err
	}

	return Collect(ctx, first, func(ctx context.Context, after string) (Page[T], error) {
		nextQuery := url.Values{}
		for k, vs := range query {
			nextQuery[k] = vs
		}
		nextQuery.Set("after", after)

		var page Page[T]
		err := c.Get(ctx, path, nextQuery, &page)
		return page, err
	}, maxItems)
}
