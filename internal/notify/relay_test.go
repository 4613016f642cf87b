package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/core"
	"finboard/internal/ledger"
	"finboard/internal/store"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []ChangeMessage
	fail error
}

func (f *fakePublisher) Publish(ctx context.Context, msg ChangeMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) published() []ChangeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChangeMessage(nil), f.msgs...)
}

func holidayStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	require.NoError(t, s.Initialize(core.Dataset{
		Pots: []core.Pot{{ID: 1, Name: "Holiday", Total: decimal.NewFromInt(100), Target: decimal.NewFromInt(500)}},
	}))
	return s
}

func TestRelayPublishesEveryChange(t *testing.T) {
	s := holidayStore(t)
	pub := &fakePublisher{}
	relay := NewRelay(pub, 8, nil)
	s.Subscribe(relay.Listener())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.NoError(t, s.Replace(ledger.Deposit(1, decimal.NewFromInt(50))))
	require.NoError(t, s.Replace(ledger.Withdraw(1, decimal.NewFromInt(20))))
	assert.Error(t, s.Replace(ledger.Withdraw(1, decimal.NewFromInt(1000))))

	assert.Eventually(t, func() bool { return len(pub.published()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	msgs := pub.published()
	assert.Equal(t, uint64(1), msgs[0].Revision)
	assert.Equal(t, "150.00", msgs[0].TotalSaved)
	assert.Equal(t, "130.00", msgs[1].TotalSaved)
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
	_, err := uuid.Parse(msgs[0].ID)
	assert.NoError(t, err)

	sent, dropped := relay.Stats()
	assert.Equal(t, uint64(2), sent)
	assert.Zero(t, dropped)
}

func TestRelayDropsWhenFull(t *testing.T) {
	s := holidayStore(t)
	relay := NewRelay(&fakePublisher{}, 1, nil)
	s.Subscribe(relay.Listener())

	// Nothing drains the queue, so only the first change fits.
	for range 3 {
		require.NoError(t, s.Replace(ledger.Deposit(1, decimal.NewFromInt(1))))
	}
	_, dropped := relay.Stats()
	assert.Equal(t, uint64(2), dropped)
	assert.Equal(t, uint64(3), s.Revision(), "replace must not block on a full relay")
}

func TestRelayFlushesOnShutdown(t *testing.T) {
	s := holidayStore(t)
	pub := &fakePublisher{}
	relay := NewRelay(pub, 4, nil)
	s.Subscribe(relay.Listener())

	require.NoError(t, s.Replace(ledger.Deposit(1, decimal.NewFromInt(1))))
	require.NoError(t, s.Replace(ledger.Deposit(1, decimal.NewFromInt(1))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay.Run(ctx)

	assert.Len(t, pub.published(), 2)
}

func TestRelayKeepsGoingAfterPublishError(t *testing.T) {
	s := holidayStore(t)
	pub := &fakePublisher{fail: errors.New("broker down")}
	relay := NewRelay(pub, 4, nil)
	s.Subscribe(relay.Listener())
	require.NoError(t, s.Replace(ledger.Deposit(1, decimal.NewFromInt(1))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	relay.Run(ctx)

	sent, _ := relay.Stats()
	assert.Zero(t, sent)
}

func TestChangeMessageJSON(t *testing.T) {
	msg := NewChangeMessage(store.Change{Revision: 7, Snapshot: core.Dataset{
		Pots: []core.Pot{{ID: 1, Total: decimal.RequireFromString("12.5")}},
	}}, time.Date(2024, 8, 20, 10, 0, 0, 0, time.UTC))

	b, err := msg.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"totalSaved":"12.50"`)

	back, err := ChangeMessageFromJSON(b)
	require.NoError(t, err)
	assert.Equal(t, msg, back)
}
