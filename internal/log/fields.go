package log

import "slices"

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldRevision     = "revision"
	FieldTransactions = "transactions"
	FieldPots         = "pots"
	FieldBills        = "bills"
	FieldBudgets      = "budgets"
	FieldPotID        = "pot_id"
	FieldPotName      = "pot_name"
	FieldAmount       = "amount"
	FieldSource       = "source"
	FieldPath         = "path"
	FieldMessageID    = "message_id"
	FieldExchange     = "exchange"
	FieldRoutingKey   = "routing_key"
	FieldCacheKey     = "cache_key"
	FieldDuration     = "duration"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentStore  = "store"
	ComponentLedger = "ledger"
	ComponentIntake = "intake"
	ComponentViews  = "views"
	ComponentSeed   = "seed"
	ComponentAMQP   = "amqp"
	ComponentCache  = "cache"
)

// Operations defines standard operation names
const (
	OpDeposit  = "deposit"
	OpWithdraw = "withdraw"
	OpCreate   = "create"
	OpDelete   = "delete"
	OpAdd      = "add"
	OpLoad     = "load"
	OpMigrate  = "migrate"
	OpPublish  = "publish"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithPot adds the pot identity and the amount moved, if any.
func (f LogFields) WithPot(id int64, name string, amount string) LogFields {
	f[FieldPotID] = id
	if name != "" {
		f[FieldPotName] = name
	}
	if amount != "" {
		f[FieldAmount] = amount
	}
	return f
}

// WithRevision adds the store revision field
func (f LogFields) WithRevision(rev uint64) LogFields {
	f[FieldRevision] = rev
	return f
}

// ToSlice converts LogFields to a slice for slog. Keys are emitted in
// sorted order so output is stable.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	slice := make([]any, 0, len(f)*2)
	for _, k := range keys {
		slice = append(slice, k, f[k])
	}
	return slice
}
