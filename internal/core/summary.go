package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category Category
	Amount   decimal.Decimal
}

// SpendByCategory sums the debits of txs per category, in category display
// order. Categories without spending are left out.
func SpendByCategory(txs []Transaction) []CategoryAmount {
	sums := make(map[Category]decimal.Decimal)
	for _, t := range txs {
		if !t.Amount.IsNegative() {
			continue
		}
		sums[t.Category] = sums[t.Category].Add(t.Amount.Neg())
	}
	var out []CategoryAmount
	for _, c := range Categories() {
		if amt, ok := sums[c]; ok {
			out = append(out, CategoryAmount{Category: c, Amount: amt})
		}
	}
	return out
}
