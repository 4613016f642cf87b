package seed

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

func sheetSections() [][][]interface{} {
	return [][][]interface{}{
		{{"Current", "Income", "Expenses"}, {4836.0, "3814.25", 1700.5}},
		{
			{"Name", "Category", "Amount", "Date"},
			{"Emma Richardson", "General", 75.5, "2024-08-19"},
			{},
			{"Savory Bites Bistro", "Dining Out", "-55,50", "2024-08-19T20:23:11Z"},
		},
		{
			{"ID", "Name", "Total", "Target", "Theme"},
			{1.0, "Savings", 159.0, 2000.0, "#277C78"},
			{"2", "Gift", "40", "60"},
		},
		{{"Category", "Maximum"}, {"Bills", 750.0}},
		{{"id", "title", "due_date", "amount", "paid"}, {3.0, "Aqua Flow", "2024-09-10", 100.0, "TRUE"}},
	}
}

func TestParseSheets(t *testing.T) {
	d, err := parseSheets(sheetSections())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Balance.Income.Equal(decimal.RequireFromString("3814.25")) {
		t.Errorf("income = %s", d.Balance.Income)
	}
	if len(d.Transactions) != 2 {
		t.Fatalf("expected blank rows skipped, got %d transactions", len(d.Transactions))
	}
	if got := d.Transactions[1].Amount; !got.Equal(decimal.RequireFromString("-55.5")) {
		t.Errorf("amount = %s", got)
	}
	if len(d.Pots) != 2 || d.Pots[1].ID != 2 || d.Pots[1].Theme != "" {
		t.Errorf("unexpected pots: %+v", d.Pots)
	}
	if len(d.Bills) != 1 || !d.Bills[0].Paid || d.Bills[0].DueDate.String() != "2024-09-10" {
		t.Errorf("unexpected bills: %+v", d.Bills)
	}
}

func TestParseSheetsWithoutBills(t *testing.T) {
	s := sheetSections()
	s[4] = nil
	d, err := parseSheets(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Bills) != 0 {
		t.Errorf("expected no bills, got %d", len(d.Bills))
	}
}

func TestParseSheetsErrors(t *testing.T) {
	cases := map[string]func(s [][][]interface{}) [][][]interface{}{
		"wrong range count": func(s [][][]interface{}) [][][]interface{} { return s[:3] },
		"missing column": func(s [][][]interface{}) [][][]interface{} {
			s[1][0] = []interface{}{"Name", "Category", "Date"}
			return s
		},
		"empty balance": func(s [][][]interface{}) [][][]interface{} {
			s[0] = s[0][:1]
			return s
		},
		"bad amount": func(s [][][]interface{}) [][][]interface{} {
			s[2][1] = []interface{}{1.0, "Savings", "lots", 2000.0}
			return s
		},
		"bad pot id": func(s [][][]interface{}) [][][]interface{} {
			s[2][2] = []interface{}{"two", "Gift", "40", "60"}
			return s
		},
		"paid not a boolean": func(s [][][]interface{}) [][][]interface{} {
			s[4][1] = []interface{}{3.0, "Aqua Flow", "2024-09-10", 100.0, "yes"}
			return s
		},
		"unknown category": func(s [][][]interface{}) [][][]interface{} {
			s[1][1] = []interface{}{"Emma", "Rent", 1.0, "2024-08-19"}
			return s
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseSheets(mutate(sheetSections()))
			if !errors.Is(err, core.ErrInvalidSeed) {
				t.Fatalf("expected ErrInvalidSeed, got %v", err)
			}
		})
	}
}

func TestDefaultSheetRanges(t *testing.T) {
	r := SheetRanges{Pots: "Savings!A:E"}.withDefaults()
	if r.Pots != "Savings!A:E" || r.Balance != "Balance!A:C" {
		t.Errorf("unexpected ranges: %+v", r)
	}
}

func TestParseSheetsPaidColumn(t *testing.T) {
	cases := []struct {
		cell interface{}
		want bool
	}{
		{"TRUE", true},
		{true, true},
		{"false", false},
		{"", false},
	}
	for _, tc := range cases {
		sections := sheetSections()
		sections[4][1] = []interface{}{3.0, "Aqua Flow", "2024-09-10", 100.0, tc.cell}
		d, err := parseSheets(sections)
		if err != nil {
			t.Fatalf("paid %v: unexpected error %v", tc.cell, err)
		}
		if d.Bills[0].Paid != tc.want {
			t.Errorf("paid %v: got %v, want %v", tc.cell, d.Bills[0].Paid, tc.want)
		}
	}
}
