package query

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is the requested window of a list.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads page and limit, falling back to defaults on bad input.
func ParsePage(values url.Values) Page {
	page, err := strconv.Atoi(values.Get("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(values.Get("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

// Pagination is the metadata returned alongside list results.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func NewPagination(p Page, total int64) Pagination {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}

// FetchPage runs the count and the list query concurrently.
func FetchPage[T any](
	ctx context.Context,
	count func(ctx context.Context) (int64, error),
	list func(ctx context.Context) ([]T, error),
) ([]T, int64, error) {
	var (
		items []T
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = count(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = list(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if items == nil {
		items = []T{}
	}
	return items, total, nil
}
