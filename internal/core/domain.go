package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Entertainment  Category = "Entertainment"
	Bills          Category = "Bills"
	Groceries      Category = "Groceries"
	DiningOut      Category = "Dining Out"
	Transportation Category = "Transportation"
	PersonalCare   Category = "Personal Care"
	Education      Category = "Education"
	Lifestyle      Category = "Lifestyle"
	Shopping       Category = "Shopping"
	General        Category = "General"
)

type (
	Category string

	Date struct {
		time.Time
	}

	Transaction struct {
		Name     string
		Category Category
		Amount   decimal.Decimal // negative debit, positive credit
		Date     Date
	}

	Pot struct {
		ID     int64
		Name   string
		Total  decimal.Decimal
		Target decimal.Decimal
		Theme  string
	}

	Budget struct {
		Category string
		Maximum  decimal.Decimal
		Theme    string
	}

	BalanceSummary struct {
		Current  decimal.Decimal
		Income   decimal.Decimal
		Expenses decimal.Decimal
	}

	Bill struct {
		ID      int64
		Title   string
		DueDate Date
		Amount  decimal.Decimal
		Paid    bool
	}

	// Dataset is the aggregate root shared by every view.
	Dataset struct {
		Balance      BalanceSummary
		Transactions []Transaction
		Pots         []Pot
		Budgets      []Budget
		Bills        []Bill
	}
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		Entertainment,
		Bills,
		Groceries,
		DiningOut,
		Transportation,
		PersonalCare,
		Education,
		Lifestyle,
		Shopping,
		General,
	}
}

// ParseCategory matches s against the display names, ignoring case and
// surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrMissingCategory, s)
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf keeps the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingDate
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not a calendar date", ErrMissingDate, s)
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !t.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrMissingCategory, t.Category)
	}
	return t.Date.Validate()
}

func (p Pot) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Total.IsNegative() {
		return fmt.Errorf("%w: negative total %s", ErrInvalidAmount, p.Total)
	}
	if !p.Target.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, p.Target)
	}
	return nil
}

// FindPot returns the index of the pot with id, or -1.
func (d Dataset) FindPot(id int64) int {
	for i, p := range d.Pots {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// TotalSaved sums every pot total.
func (d Dataset) TotalSaved() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Pots {
		total = total.Add(p.Total)
	}
	return total
}

// Clone copies every collection so the result can be changed without
// touching d.
func (d Dataset) Clone() Dataset {
	return Dataset{
		Balance:      d.Balance,
		Transactions: cloneSlice(d.Transactions),
		Pots:         cloneSlice(d.Pots),
		Budgets:      cloneSlice(d.Budgets),
		Bills:        cloneSlice(d.Bills),
	}
}

// Validate checks the invariants a seed must satisfy before it is accepted.
func (d Dataset) Validate() error {
	var errs []error
	seen := make(map[int64]struct{}, len(d.Pots))
	for i, p := range d.Pots {
		if _, dup := seen[p.ID]; dup {
			errs = append(errs, fmt.Errorf("pot %d: duplicate id %d", i, p.ID))
		}
		seen[p.ID] = struct{}{}
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("pot %d (%s): %w", i, p.Name, err))
		}
	}
	for i, t := range d.Transactions {
		if err := t.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", i, err))
		}
	}
	for i, b := range d.Bills {
		if err := b.DueDate.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("bill %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, errors.Join(errs...))
	}
	return nil
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
