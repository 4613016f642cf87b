// Package store owns the single in-memory dataset every view reads from.
// Writers replace it wholesale through an Updater; readers always get a
// private copy.
package store

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"finboard/internal/core"
	"finboard/internal/log"
)

// Updater derives the next dataset from the current one. It receives a
// copy it may freely modify; returning an error discards the change.
type Updater func(core.Dataset) (core.Dataset, error)

// Change is delivered to listeners after every successful Replace.
type Change struct {
	Revision uint64
	Snapshot core.Dataset
}

type Listener func(Change)

type subscription struct {
	fn     Listener
	active bool
}

type Store struct {
	mu          sync.RWMutex
	writeMu     sync.Mutex
	data        core.Dataset
	revision    uint64
	initialized bool

	subMu  sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64

	logger *slog.Logger
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		subs:   make(map[uint64]*subscription),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(log.FieldComponent, log.ComponentStore)
	return s
}

// Initialize installs the seed dataset. It can only succeed once and does
// not notify listeners.
func (s *Store) Initialize(seed core.Dataset) error {
	if err := seed.Validate(); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return core.ErrAlreadyInitialized
	}
	s.data = seed.Clone()
	s.initialized = true
	s.logger.Info("Store initialized",
		log.FieldTransactions, len(seed.Transactions),
		log.FieldPots, len(seed.Pots),
		log.FieldBills, len(seed.Bills))
	return nil
}

// Snapshot returns a copy of the current dataset.
func (s *Store) Snapshot() core.Dataset {
	d, _ := s.Current()
	return d
}

// Current returns a copy of the dataset together with its revision.
func (s *Store) Current() (core.Dataset, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone(), s.revision
}

// Revision counts successful replacements since initialization.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// Replace applies update atomically. Listeners run once, after the new
// dataset is visible, and only when update succeeds.
func (s *Store) Replace(update Updater) error {
	if update == nil {
		return fmt.Errorf("replace: nil updater")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	if !s.initialized {
		s.mu.RUnlock()
		return core.ErrNotInitialized
	}
	working := s.data.Clone()
	s.mu.RUnlock()

	next, err := update(working)
	if err != nil {
		s.logger.Debug("Update rejected", log.FieldError, err)
		return err
	}

	s.mu.Lock()
	s.data = next.Clone()
	s.revision++
	change := Change{Revision: s.revision, Snapshot: s.data.Clone()}
	s.mu.Unlock()

	s.logger.Debug("Dataset replaced", log.FieldRevision, change.Revision)
	s.notify(change)
	return nil
}

// Subscribe registers fn for future changes. The returned function removes
// it and may be called any number of times, including from inside fn.
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	sub := &subscription{fn: fn, active: true}
	s.subs[id] = sub

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			sub.active = false
			delete(s.subs, id)
		})
	}
}

func (s *Store) notify(change Change) {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]*subscription, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.subMu.Unlock()

	for _, sub := range subs {
		s.subMu.Lock()
		active := sub.active
		s.subMu.Unlock()
		if !active {
			continue
		}
		// Each listener gets its own copy.
		sub.fn(Change{Revision: change.Revision, Snapshot: change.Snapshot.Clone()})
	}
}
