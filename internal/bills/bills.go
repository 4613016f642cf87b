// Package bills classifies recurring bills relative to a day and totals
// them for the bills summary.
//
// Whether a bill is "due soon" is a policy decision. Each policy is its own
// DueSoonPolicy; ForwardWindow is the one the dashboard uses.
package bills

import (
	"fmt"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// DueSoonPolicy decides whether an unpaid bill needs attention soon.
type DueSoonPolicy interface {
	DueSoon(due, today core.Date) bool
}

// ForwardWindow marks bills due between today and Days days ahead,
// both ends included.
type ForwardWindow struct {
	Days int
}

func (w ForwardWindow) DueSoon(due, today core.Date) bool {
	limit := today.AddDate(0, 0, w.Days)
	return !due.Before(today.Time) && !due.After(limit)
}

// TrailingWindow marks bills whose due date fell within the last Days days.
type TrailingWindow struct {
	Days int
}

func (w TrailingWindow) DueSoon(due, today core.Date) bool {
	floor := today.AddDate(0, 0, -w.Days)
	return !due.After(today.Time) && !due.Before(floor)
}

// DefaultPolicy is a forward seven-day window.
var DefaultPolicy DueSoonPolicy = ForwardWindow{Days: 7}

var policies = map[string]func(days int) DueSoonPolicy{
	"forward":  func(days int) DueSoonPolicy { return ForwardWindow{Days: days} },
	"trailing": func(days int) DueSoonPolicy { return TrailingWindow{Days: days} },
}

// GetPolicy returns the named policy configured with days.
func GetPolicy(name string, days int) (DueSoonPolicy, error) {
	build, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown due-soon policy: %s", name)
	}
	if days < 0 {
		return nil, fmt.Errorf("due-soon window must not be negative: %d", days)
	}
	return build(days), nil
}

type Status string

const (
	StatusPaid     Status = "paid"
	StatusOverdue  Status = "overdue"
	StatusDueSoon  Status = "due_soon"
	StatusUpcoming Status = "upcoming"
)

// Classify reports the status of b on today. Due soon takes precedence
// over overdue and upcoming, so a trailing policy can flag recent misses.
func Classify(b core.Bill, today core.Date, policy DueSoonPolicy) Status {
	if policy == nil {
		policy = DefaultPolicy
	}
	switch {
	case b.Paid:
		return StatusPaid
	case policy.DueSoon(b.DueDate, today):
		return StatusDueSoon
	case b.DueDate.Before(today.Time):
		return StatusOverdue
	default:
		return StatusUpcoming
	}
}

// Summary totals bills by status. Upcoming covers every unpaid bill due
// today or later, including those also counted as due soon.
type Summary struct {
	Total    decimal.Decimal
	Paid     decimal.Decimal
	Upcoming decimal.Decimal
	DueSoon  decimal.Decimal
	Overdue  decimal.Decimal

	PaidCount     int
	UpcomingCount int
	DueSoonCount  int
	OverdueCount  int
}

func Summarize(bills []core.Bill, today core.Date, policy DueSoonPolicy) Summary {
	if policy == nil {
		policy = DefaultPolicy
	}
	s := Summary{
		Total:    decimal.Zero,
		Paid:     decimal.Zero,
		Upcoming: decimal.Zero,
		DueSoon:  decimal.Zero,
		Overdue:  decimal.Zero,
	}
	for _, b := range bills {
		s.Total = s.Total.Add(b.Amount)
		if b.Paid {
			s.Paid = s.Paid.Add(b.Amount)
			s.PaidCount++
			continue
		}
		if policy.DueSoon(b.DueDate, today) {
			s.DueSoon = s.DueSoon.Add(b.Amount)
			s.DueSoonCount++
		}
		if b.DueDate.Before(today.Time) {
			s.Overdue = s.Overdue.Add(b.Amount)
			s.OverdueCount++
		} else {
			s.Upcoming = s.Upcoming.Add(b.Amount)
			s.UpcomingCount++
		}
	}
	return s
}
