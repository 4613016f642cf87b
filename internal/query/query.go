// Package query implements the filter, sort and paginate pipeline every
// list view runs over its slice of records.
package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"finboard/internal/core"
)

// Comparator orders two records the way cmp.Compare does.
type Comparator[T any] func(a, b T) int

// Options describes one evaluation of the pipeline.
type Options[T any] struct {
	// SearchText is matched case-insensitively as a substring of
	// SearchField(record). Empty matches everything.
	SearchText  string
	SearchField func(T) string

	// CategoryFilter is applied after the text filter; nil passes everything.
	CategoryFilter func(T) bool

	// SortKey selects a comparator from Comparators. Empty keeps the
	// filtered order.
	SortKey     string
	Comparators map[string]Comparator[T]

	Page     int
	PageSize int
}

// Page is one slice of the filtered, sorted records.
type Page[T any] struct {
	Items      []T
	Page       int // requested page after clamping
	TotalPages int
	TotalCount int // records left after filtering
}

// Run evaluates opts over records. It never modifies records and returns
// identical output for identical input.
func Run[T any](records []T, opts Options[T]) (Page[T], error) {
	cmp, err := opts.validate()
	if err != nil {
		return Page[T]{}, err
	}

	filtered := filter(records, opts)
	if cmp != nil {
		slices.SortStableFunc(filtered, cmp)
	}
	return paginate(filtered, opts.Page, opts.PageSize), nil
}

func (o Options[T]) validate() (Comparator[T], error) {
	if o.PageSize <= 0 {
		return nil, fmt.Errorf("%w: page size %d must be positive", core.ErrInvalidQuery, o.PageSize)
	}
	if o.SearchText != "" && o.SearchField == nil {
		return nil, fmt.Errorf("%w: search text without a search field", core.ErrInvalidQuery)
	}
	if o.SortKey == "" {
		return nil, nil
	}
	cmp, ok := o.Comparators[o.SortKey]
	if !ok || cmp == nil {
		return nil, fmt.Errorf("%w: unknown sort key %q", core.ErrInvalidQuery, o.SortKey)
	}
	return cmp, nil
}

// filter always returns a fresh slice so sorting cannot reorder the caller's
// records.
func filter[T any](records []T, opts Options[T]) []T {
	out := make([]T, 0, len(records))
	needle := ""
	if opts.SearchText != "" {
		needle = cases.Fold().String(opts.SearchText)
	}
	folder := cases.Fold()
	for _, r := range records {
		if needle != "" && !strings.Contains(folder.String(opts.SearchField(r)), needle) {
			continue
		}
		if opts.CategoryFilter != nil && !opts.CategoryFilter(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func paginate[T any](filtered []T, page, pageSize int) Page[T] {
	total := len(filtered)
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	page = max(1, min(page, max(totalPages, 1)))

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	return Page[T]{
		Items:      filtered[start:end:end],
		Page:       page,
		TotalPages: totalPages,
		TotalCount: total,
	}
}
