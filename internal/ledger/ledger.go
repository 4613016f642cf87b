// Package ledger builds the store updaters that move money in and out of
// savings pots and manage the pot list itself.
package ledger

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/store"
)

// Deposit adds amount to the pot with id.
func Deposit(id int64, amount decimal.Decimal) store.Updater {
	return func(d core.Dataset) (core.Dataset, error) {
		if !amount.IsPositive() {
			return d, fmt.Errorf("deposit %s: %w", amount, core.ErrInvalidAmount)
		}
		return withPot(d, id, func(p core.Pot) (core.Pot, error) {
			p.Total = p.Total.Add(amount)
			return p, nil
		})
	}
}

// Withdraw moves amount out of the pot with id. The pot total never goes
// below zero.
func Withdraw(id int64, amount decimal.Decimal) store.Updater {
	return func(d core.Dataset) (core.Dataset, error) {
		if !amount.IsPositive() {
			return d, fmt.Errorf("withdraw %s: %w", amount, core.ErrInvalidAmount)
		}
		return withPot(d, id, func(p core.Pot) (core.Pot, error) {
			if amount.GreaterThan(p.Total) {
				return p, fmt.Errorf("withdraw %s from %q holding %s: %w",
					amount, p.Name, p.Total, core.ErrInsufficientFunds)
			}
			p.Total = p.Total.Sub(amount)
			return p, nil
		})
	}
}

// Create appends an empty pot. Its id comes from now, bumped past every
// existing id so two pots created in the same millisecond stay distinct.
func Create(name string, target decimal.Decimal, now time.Time) store.Updater {
	return func(d core.Dataset) (core.Dataset, error) {
		name = strings.TrimSpace(name)
		if name == "" {
			return d, core.ErrInvalidName
		}
		if !target.IsPositive() {
			return d, fmt.Errorf("target %s: %w", target, core.ErrInvalidTarget)
		}

		id := now.UnixMilli()
		for _, p := range d.Pots {
			if p.ID == math.MaxInt64 {
				return d, fmt.Errorf("pot %d: %w", p.ID, core.ErrPotIDExhausted)
			}
			id = max(id, p.ID+1)
		}

		pots := make([]core.Pot, 0, len(d.Pots)+1)
		pots = append(pots, d.Pots...)
		d.Pots = append(pots, core.Pot{
			ID:     id,
			Name:   name,
			Total:  decimal.Zero,
			Target: target,
		})
		return d, nil
	}
}

// Remove deletes the pot with id. Removing an unknown id changes nothing.
func Remove(id int64) store.Updater {
	return func(d core.Dataset) (core.Dataset, error) {
		d.Pots = slices.DeleteFunc(slices.Clone(d.Pots), func(p core.Pot) bool {
			return p.ID == id
		})
		return d, nil
	}
}

func withPot(d core.Dataset, id int64, fn func(core.Pot) (core.Pot, error)) (core.Dataset, error) {
	i := d.FindPot(id)
	if i < 0 {
		return d, fmt.Errorf("pot %d: %w", id, core.ErrPotNotFound)
	}
	updated, err := fn(d.Pots[i])
	if err != nil {
		return d, err
	}
	pots := slices.Clone(d.Pots)
	pots[i] = updated
	d.Pots = pots
	return d, nil
}
