package views

import (
	"github.com/shopspring/decimal"

	"finboard/internal/bills"
	"finboard/internal/core"
)

// LatestTransactions is how many transactions the overview shows.
const LatestTransactions = 5

// BudgetUsage compares a budget with what was spent in its category.
type BudgetUsage struct {
	Budget    core.Budget
	Spent     decimal.Decimal
	Remaining decimal.Decimal // negative when over budget
}

type Overview struct {
	Balance            core.BalanceSummary
	TotalSaved         decimal.Decimal
	Pots               []PotProgress
	Budgets            []BudgetUsage
	BillsTransactions  int
	LatestTransactions []core.Transaction
	Bills              bills.Summary
	Spending           []core.CategoryAmount
}

// BuildOverview summarizes d as of today. The balance is shown exactly as
// stored; it is not recomputed from transactions.
func BuildOverview(d core.Dataset, today core.Date, policy bills.DueSoonPolicy) Overview {
	spending := core.SpendByCategory(d.Transactions)
	spent := make(map[core.Category]decimal.Decimal, len(spending))
	for _, s := range spending {
		spent[s.Category] = s.Amount
	}

	budgets := make([]BudgetUsage, len(d.Budgets))
	for i, b := range d.Budgets {
		amt := spent[core.Category(b.Category)]
		budgets[i] = BudgetUsage{Budget: b, Spent: amt, Remaining: b.Maximum.Sub(amt)}
	}

	billsCount := 0
	for _, t := range d.Transactions {
		if t.Category == core.Bills {
			billsCount++
		}
	}

	latest := d.Transactions[:min(LatestTransactions, len(d.Transactions))]

	return Overview{
		Balance:            d.Balance,
		TotalSaved:         d.TotalSaved(),
		Pots:               Pots(d),
		Budgets:            budgets,
		BillsTransactions:  billsCount,
		LatestTransactions: append([]core.Transaction(nil), latest...),
		Bills:              bills.Summarize(d.Bills, today, policy),
		Spending:           spending,
	}
}
