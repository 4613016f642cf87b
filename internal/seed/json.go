package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// FileSource reads a JSON seed document from disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Load(ctx context.Context) (core.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return core.Dataset{}, err
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("read seed %s: %w", f.Path, err)
	}
	return Decode(bytes.NewReader(b))
}

type document struct {
	Balance      *balanceJSON       `json:"balance"`
	Transactions *[]transactionJSON `json:"transactions"`
	Pots         *[]potJSON         `json:"pots"`
	Budgets      *[]budgetJSON      `json:"budgets"`
	Bills        []billJSON         `json:"bills"`
}

type balanceJSON struct {
	Current  decimal.Decimal `json:"current"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type transactionJSON struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     core.Date       `json:"date"`
}

type potJSON struct {
	ID     *int64          `json:"id"`
	Name   string          `json:"name"`
	Total  decimal.Decimal `json:"total"`
	Target decimal.Decimal `json:"target"`
	Theme  string          `json:"theme"`
}

type budgetJSON struct {
	Category string          `json:"category"`
	Maximum  decimal.Decimal `json:"maximum"`
	Theme    string          `json:"theme"`
}

type billJSON struct {
	ID      int64           `json:"id"`
	Title   string          `json:"title"`
	DueDate core.Date       `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
	Paid    bool            `json:"paid"`
}

// Decode parses and validates a seed document. Any missing section, type
// mismatch or broken invariant is reported as core.ErrInvalidSeed.
func Decode(r io.Reader) (core.Dataset, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return core.Dataset{}, fmt.Errorf("%w: %w", core.ErrInvalidSeed, err)
	}

	var missing []string
	if doc.Balance == nil {
		missing = append(missing, "balance")
	}
	if doc.Transactions == nil {
		missing = append(missing, "transactions")
	}
	if doc.Pots == nil {
		missing = append(missing, "pots")
	}
	if doc.Budgets == nil {
		missing = append(missing, "budgets")
	}
	if len(missing) > 0 {
		return core.Dataset{}, fmt.Errorf("%w: missing %v", core.ErrInvalidSeed, missing)
	}

	d := core.Dataset{
		Balance: core.BalanceSummary{
			Current:  doc.Balance.Current,
			Income:   doc.Balance.Income,
			Expenses: doc.Balance.Expenses,
		},
		Transactions: make([]core.Transaction, 0, len(*doc.Transactions)),
		Pots:         make([]core.Pot, 0, len(*doc.Pots)),
		Budgets:      make([]core.Budget, 0, len(*doc.Budgets)),
	}
	for _, t := range *doc.Transactions {
		d.Transactions = append(d.Transactions, core.Transaction{
			Name:     t.Name,
			Category: core.Category(t.Category),
			Amount:   t.Amount,
			Date:     t.Date,
		})
	}

	// Pots without an id get one past the largest explicit id.
	var nextID int64 = 1
	for _, p := range *doc.Pots {
		if p.ID != nil {
			nextID = max(nextID, *p.ID+1)
		}
	}
	for _, p := range *doc.Pots {
		id := nextID
		if p.ID != nil {
			id = *p.ID
		} else {
			nextID++
		}
		d.Pots = append(d.Pots, core.Pot{ID: id, Name: p.Name, Total: p.Total, Target: p.Target, Theme: p.Theme})
	}

	for _, b := range *doc.Budgets {
		d.Budgets = append(d.Budgets, core.Budget{Category: b.Category, Maximum: b.Maximum, Theme: b.Theme})
	}
	for _, b := range doc.Bills {
		d.Bills = append(d.Bills, core.Bill{ID: b.ID, Title: b.Title, DueDate: b.DueDate, Amount: b.Amount, Paid: b.Paid})
	}

	if err := d.Validate(); err != nil {
		return core.Dataset{}, err
	}
	return d, nil
}
