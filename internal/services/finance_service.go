// Package services wires the finance store to its seed, its views and the
// optional change relay, and exposes the operations commands call.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"finboard/internal/bills"
	"finboard/internal/cache"
	"finboard/internal/core"
	"finboard/internal/intake"
	"finboard/internal/ledger"
	"finboard/internal/log"
	"finboard/internal/notify"
	"finboard/internal/query"
	"finboard/internal/seed"
	"finboard/internal/store"
	"finboard/internal/views"
)

// Options tunes a FinanceService. Zero values pick the defaults below.
type Options struct {
	PageSize      int
	CacheSize     int
	CacheTTL      time.Duration
	SweepInterval time.Duration
	Policy        bills.DueSoonPolicy

	// Publisher receives every committed change; nil disables the relay.
	Publisher notify.Publisher

	Clock  func() time.Time
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = views.DefaultPageSize
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 128
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	if o.Policy == nil {
		o.Policy = bills.DefaultPolicy
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// FinanceService orchestrates dataset reads and changes for one process.
type FinanceService struct {
	store  *store.Store
	pager  *views.TransactionPager
	caches *cache.Manager
	relay  *notify.Relay
	pub    notify.Publisher
	opts   Options

	logger    *slog.Logger
	ledgerLog *slog.Logger
	intakeLog *slog.Logger

	unsubscribe func()
}

// NewFinanceService loads the seed from src and initializes a fresh store
// with it.
func NewFinanceService(ctx context.Context, src seed.Source, opts Options) (*FinanceService, error) {
	opts = opts.withDefaults()
	logger := log.WithComponent(opts.Logger, log.ComponentApp)

	start := time.Now()
	d, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	logger.Info("Seed loaded",
		log.FieldOperation, log.OpLoad,
		log.FieldDuration, time.Since(start))

	st := store.New(store.WithLogger(opts.Logger))
	if err := st.Initialize(d); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	pages := cache.NewLRUCache[query.Page[core.Transaction]](opts.CacheSize, opts.CacheTTL, cache.WithClock(opts.Clock))
	caches := cache.NewManager(opts.Logger)
	caches.Register(pages)

	s := &FinanceService{
		store:       st,
		pager:       views.NewTransactionPager(st, pages, opts.Logger),
		caches:      caches,
		pub:         opts.Publisher,
		opts:        opts,
		logger:      logger,
		ledgerLog:   log.WithComponent(opts.Logger, log.ComponentLedger),
		intakeLog:   log.WithComponent(opts.Logger, log.ComponentIntake),
		unsubscribe: func() {},
	}
	if opts.Publisher != nil {
		s.relay = notify.NewRelay(opts.Publisher, notify.DefaultBuffer, opts.Logger)
		s.unsubscribe = st.Subscribe(s.relay.Listener())
	} else {
		logger.Warn("AMQP publisher not available, changes will not be relayed")
	}
	return s, nil
}

// Run drives the background work until ctx is done. Queued change
// messages are flushed before it returns.
func (s *FinanceService) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.caches.Run(ctx, s.opts.SweepInterval)
		return nil
	})
	if s.relay != nil {
		g.Go(func() error {
			s.relay.Run(ctx)
			return nil
		})
	}
	return g.Wait()
}

func (s *FinanceService) Store() *store.Store {
	return s.store
}

func (s *FinanceService) today() core.Date {
	return core.DateOf(s.opts.Clock())
}

// Overview summarizes the current dataset.
func (s *FinanceService) Overview() views.Overview {
	return views.BuildOverview(s.store.Snapshot(), s.today(), s.opts.Policy)
}

// Transactions returns one page of the transactions list.
func (s *FinanceService) Transactions(req views.TransactionRequest) (query.Page[core.Transaction], error) {
	if req.PageSize == 0 {
		req.PageSize = s.opts.PageSize
	}
	return s.pager.Page(req)
}

func (s *FinanceService) Bills(req views.BillRequest) (views.BillsPage, error) {
	return views.Bills(s.store.Snapshot(), req, s.today(), s.opts.Policy)
}

func (s *FinanceService) Pots() []views.PotProgress {
	return views.Pots(s.store.Snapshot())
}

// Deposit moves amount into the pot with id.
func (s *FinanceService) Deposit(id int64, amount string) error {
	return s.movePot(log.OpDeposit, id, amount, ledger.Deposit)
}

// Withdraw moves amount out of the pot with id.
func (s *FinanceService) Withdraw(id int64, amount string) error {
	return s.movePot(log.OpWithdraw, id, amount, ledger.Withdraw)
}

func (s *FinanceService) movePot(op string, id int64, raw string, move func(int64, decimal.Decimal) store.Updater) error {
	fields := log.NewFields().WithOperation(op).WithPot(id, "", raw)

	amount, err := core.ParseAmount(raw)
	if err == nil {
		err = s.store.Replace(move(id, amount))
	}
	if err != nil {
		s.ledgerLog.Warn("Pot update rejected", fields.WithError(err).ToSlice()...)
		return err
	}
	s.ledgerLog.Info("Pot updated", fields.WithRevision(s.store.Revision()).ToSlice()...)
	return nil
}

// CreatePot adds an empty pot and returns it.
func (s *FinanceService) CreatePot(name, target string) (core.Pot, error) {
	amount, err := core.ParseAmount(target)
	if err != nil {
		return core.Pot{}, fmt.Errorf("target %q: %w", target, core.ErrInvalidTarget)
	}

	var created core.Pot
	create := ledger.Create(name, amount, s.opts.Clock())
	err = s.store.Replace(func(d core.Dataset) (core.Dataset, error) {
		next, err := create(d)
		if err != nil {
			return next, err
		}
		created = next.Pots[len(next.Pots)-1]
		return next, nil
	})
	if err != nil {
		return core.Pot{}, err
	}
	s.ledgerLog.Info("Pot created",
		log.NewFields().WithOperation(log.OpCreate).WithPot(created.ID, created.Name, "").ToSlice()...)
	return created, nil
}

// DeletePot removes the pot with id. Unknown ids are ignored.
func (s *FinanceService) DeletePot(id int64) error {
	if err := s.store.Replace(ledger.Remove(id)); err != nil {
		return err
	}
	s.ledgerLog.Info("Pot deleted", log.NewFields().WithOperation(log.OpDelete).WithPot(id, "", "").ToSlice()...)
	return nil
}

// AddTransaction validates draft against today and prepends it. On
// validation failure the error is an intake.ValidationErrors.
func (s *FinanceService) AddTransaction(draft intake.Draft) (core.Transaction, error) {
	tx, err := intake.Validate(draft, s.today())
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Replace(intake.Prepend(tx)); err != nil {
		return core.Transaction{}, err
	}
	s.intakeLog.Info("Transaction added",
		log.FieldOperation, log.OpAdd,
		log.FieldAmount, tx.Amount.String(),
		log.FieldRevision, s.store.Revision())
	return tx, nil
}

// Close releases the subscriptions and the publisher. Call it after Run
// has returned so queued messages are not lost.
func (s *FinanceService) Close() error {
	var errs []error

	s.unsubscribe()
	s.pager.Close()
	if s.pub != nil {
		if err := s.pub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
