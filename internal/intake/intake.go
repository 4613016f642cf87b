// Package intake turns a raw transaction form into a validated
// transaction and the store update that records it.
package intake

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"finboard/internal/core"
	"finboard/internal/store"
)

// Draft is the transaction form exactly as the user typed it.
type Draft struct {
	Name     string
	Amount   string
	Category string
	Date     string
}

type Field string

const (
	FieldName     Field = "name"
	FieldAmount   Field = "amount"
	FieldCategory Field = "category"
	FieldDate     Field = "date"
)

var fieldOrder = []Field{FieldName, FieldAmount, FieldCategory, FieldDate}

// Earliest is the oldest date a new transaction may carry.
var Earliest = core.NewDate(2000, 1, 1)

// ValidationErrors holds one error per rejected field.
type ValidationErrors map[Field]error

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range fieldOrder {
		if err, ok := v[f]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", f, err))
		}
	}
	return "invalid transaction: " + strings.Join(parts, "; ")
}

// Unwrap exposes every field error to errors.Is and errors.As.
func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, f := range fieldOrder {
		if err, ok := v[f]; ok {
			out = append(out, err)
		}
	}
	return out
}

// Fields lists the rejected fields in form order.
func (v ValidationErrors) Fields() []Field {
	var out []Field
	for _, f := range fieldOrder {
		if _, ok := v[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Validate checks every field of d and reports all problems at once.
// today bounds the date from above.
func Validate(d Draft, today core.Date) (core.Transaction, error) {
	errs := ValidationErrors{}
	tx := core.Transaction{Name: strings.TrimSpace(d.Name)}

	if tx.Name == "" {
		errs[FieldName] = core.ErrEmptyName
	}

	amount, err := core.ParseAmount(d.Amount)
	switch {
	case err != nil:
		errs[FieldAmount] = err
	case amount.IsZero():
		errs[FieldAmount] = fmt.Errorf("%w: amount must not be zero", core.ErrInvalidAmount)
	default:
		tx.Amount = amount
	}

	if strings.TrimSpace(d.Category) == "" {
		errs[FieldCategory] = core.ErrMissingCategory
	} else if cat, err := core.ParseCategory(d.Category); err != nil {
		errs[FieldCategory] = err
	} else {
		tx.Category = cat
	}

	if date, err := core.ParseDate(d.Date); err != nil {
		errs[FieldDate] = err
	} else if date.After(today.Time) {
		errs[FieldDate] = fmt.Errorf("%w: %s is after %s", core.ErrFutureDate, date, today)
	} else if date.Before(Earliest.Time) {
		errs[FieldDate] = fmt.Errorf("%w: %s is before %s", core.ErrDateTooOld, date, Earliest)
	} else {
		tx.Date = date
	}

	if len(errs) > 0 {
		return core.Transaction{}, errs
	}
	return tx, nil
}

// Prepend records tx as the newest transaction.
func Prepend(tx core.Transaction) store.Updater {
	return func(d core.Dataset) (core.Dataset, error) {
		if err := tx.Validate(); err != nil {
			return d, err
		}
		d.Transactions = slices.Insert(slices.Clone(d.Transactions), 0, tx)
		return d, nil
	}
}

// Submit validates d against today and, on success, returns the update
// that records it.
func Submit(d Draft, today core.Date) (store.Updater, error) {
	tx, err := Validate(d, today)
	if err != nil {
		return nil, err
	}
	return Prepend(tx), nil
}

// AsValidationErrors extracts the field errors from err, if any.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	ok := errors.As(err, &v)
	return v, ok
}
