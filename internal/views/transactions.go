// Package views assembles the read models shown by each dashboard screen
// from a dataset snapshot.
package views

import (
	"cmp"
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"finboard/internal/core"
	"finboard/internal/query"
)

// AllTransactions disables the category filter.
const AllTransactions = "All Transactions"

// DefaultPageSize is the number of transactions per page.
const DefaultPageSize = 10

const (
	SortLatest  = "Latest"
	SortOldest  = "Oldest"
	SortAToZ    = "A to Z"
	SortZToA    = "Z to A"
	SortHighest = "Highest"
	SortLowest  = "Lowest"
)

// TransactionSortKeys lists the sort options in menu order.
func TransactionSortKeys() []string {
	return []string{SortLatest, SortOldest, SortAToZ, SortZToA, SortHighest, SortLowest}
}

// TransactionComparators returns a fresh comparator table.
func TransactionComparators() map[string]query.Comparator[core.Transaction] {
	byName := nameComparator()
	return map[string]query.Comparator[core.Transaction]{
		SortLatest:  func(a, b core.Transaction) int { return b.Date.Compare(a.Date.Time) },
		SortOldest:  func(a, b core.Transaction) int { return a.Date.Compare(b.Date.Time) },
		SortAToZ:    func(a, b core.Transaction) int { return byName(a.Name, b.Name) },
		SortZToA:    func(a, b core.Transaction) int { return byName(b.Name, a.Name) },
		SortHighest: func(a, b core.Transaction) int { return b.Amount.Cmp(a.Amount) },
		SortLowest:  func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) },
	}
}

// nameComparator orders names the way a reader expects, ignoring case.
// A collator is not safe for concurrent use, so each table gets its own.
func nameComparator() func(a, b string) int {
	col := collate.New(language.English, collate.IgnoreCase)
	return func(a, b string) int {
		if c := col.CompareString(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	}
}

// TransactionRequest is one transactions screen query. Search is matched
// against names with surrounding whitespace removed, so a blank search
// matches every transaction.
type TransactionRequest struct {
	Search   string
	Category string // AllTransactions, empty, or a category display name
	Sort     string // empty means Latest
	Page     int
	PageSize int // zero means DefaultPageSize
}

func (r TransactionRequest) normalized() TransactionRequest {
	r.Search = strings.TrimSpace(r.Search)
	if r.Category == "" {
		r.Category = AllTransactions
	}
	if r.Sort == "" {
		r.Sort = SortLatest
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	return r
}

// key identifies a normalized request for caching.
func (r TransactionRequest) key() string {
	return fmt.Sprintf("%q|%q|%q|%d|%d", r.Search, r.Category, r.Sort, r.Page, r.PageSize)
}

// Transactions runs req over the dataset transactions.
func Transactions(d core.Dataset, req TransactionRequest) (query.Page[core.Transaction], error) {
	req = req.normalized()

	opts := query.Options[core.Transaction]{
		SearchText:  req.Search,
		SearchField: func(t core.Transaction) string { return t.Name },
		SortKey:     req.Sort,
		Comparators: TransactionComparators(),
		Page:        req.Page,
		PageSize:    req.PageSize,
	}
	if req.Category != AllTransactions {
		cat, err := core.ParseCategory(req.Category)
		if err != nil {
			return query.Page[core.Transaction]{}, fmt.Errorf("%w: %w", core.ErrInvalidQuery, err)
		}
		opts.CategoryFilter = func(t core.Transaction) bool { return t.Category == cat }
	}
	return query.Run(d.Transactions, opts)
}

// CategoryOptions lists the category filter choices in menu order.
func CategoryOptions() []string {
	out := []string{AllTransactions}
	for _, c := range core.Categories() {
		out = append(out, string(c))
	}
	return out
}
