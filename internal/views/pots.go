package views

import (
	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

var (
	hundred    = decimal.NewFromInt(100)
	lowCeiling = decimal.NewFromInt(30)
	highFloor  = decimal.NewFromInt(70)
)

// PotProgress is how far a pot is towards its target. Percent is capped
// at 100 and rounded to two places.
type PotProgress struct {
	Pot     core.Pot
	Percent decimal.Decimal
	Band    Band
}

func Progress(p core.Pot) PotProgress {
	pct := decimal.Zero
	if p.Target.IsPositive() {
		pct = decimal.Min(p.Total.Mul(hundred).Div(p.Target), hundred).Round(2)
	}
	band := BandHigh
	switch {
	case pct.LessThan(lowCeiling):
		band = BandLow
	case pct.LessThan(highFloor):
		band = BandMedium
	}
	return PotProgress{Pot: p, Percent: pct, Band: band}
}

// Pots returns the progress of every pot in dataset order.
func Pots(d core.Dataset) []PotProgress {
	out := make([]PotProgress, len(d.Pots))
	for i, p := range d.Pots {
		out[i] = Progress(p)
	}
	return out
}
