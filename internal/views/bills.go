package views

import (
	"cmp"

	"finboard/internal/bills"
	"finboard/internal/core"
	"finboard/internal/query"
)

const (
	BillsLatest   = "latest"
	BillsEarliest = "earliest"
)

func BillComparators() map[string]query.Comparator[core.Bill] {
	return map[string]query.Comparator[core.Bill]{
		BillsLatest:   func(a, b core.Bill) int { return b.DueDate.Compare(a.DueDate.Time) },
		BillsEarliest: func(a, b core.Bill) int { return a.DueDate.Compare(b.DueDate.Time) },
	}
}

type BillRequest struct {
	Search   string
	Sort     string // empty means latest
	Page     int
	PageSize int // zero lists every bill on one page
}

// BillRow is a bill annotated with its status on the day the page was built.
type BillRow struct {
	core.Bill
	Status bills.Status
}

type BillsPage struct {
	Rows    query.Page[BillRow]
	Summary bills.Summary
}

// Bills lists bills matching req. The summary always covers every bill.
func Bills(d core.Dataset, req BillRequest, today core.Date, policy bills.DueSoonPolicy) (BillsPage, error) {
	if req.Sort == "" {
		req.Sort = BillsLatest
	}
	if req.PageSize == 0 {
		req.PageSize = max(len(d.Bills), 1)
	}

	rows := make([]BillRow, len(d.Bills))
	for i, b := range d.Bills {
		rows[i] = BillRow{Bill: b, Status: bills.Classify(b, today, policy)}
	}

	cmps := make(map[string]query.Comparator[BillRow])
	for k, c := range BillComparators() {
		cmps[k] = func(a, b BillRow) int { return cmp.Or(c(a.Bill, b.Bill), cmp.Compare(a.ID, b.ID)) }
	}

	page, err := query.Run(rows, query.Options[BillRow]{
		SearchText:  req.Search,
		SearchField: func(r BillRow) string { return r.Title },
		SortKey:     req.Sort,
		Comparators: cmps,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		return BillsPage{}, err
	}
	return BillsPage{Rows: page, Summary: bills.Summarize(d.Bills, today, policy)}, nil
}
