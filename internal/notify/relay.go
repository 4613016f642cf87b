package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"finboard/internal/log"
	"finboard/internal/store"
)

// DefaultBuffer is how many changes may wait for the publisher.
const DefaultBuffer = 64

// Relay forwards store changes to a Publisher from its own goroutine.
// The store listener only enqueues, so Replace never waits on the network.
type Relay struct {
	pub     Publisher
	queue   chan ChangeMessage
	now     func() time.Time
	logger  *slog.Logger
	dropped atomic.Uint64
	sent    atomic.Uint64
}

func NewRelay(pub Publisher, buffer int, logger *slog.Logger) *Relay {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Relay{
		pub:    pub,
		queue:  make(chan ChangeMessage, buffer),
		now:    time.Now,
		logger: log.WithComponent(logger, log.ComponentAMQP),
	}
}

// Listener returns the store listener feeding the relay. When the buffer
// is full the change is dropped and counted.
func (r *Relay) Listener() store.Listener {
	return func(c store.Change) {
		msg := NewChangeMessage(c, r.now())
		select {
		case r.queue <- msg:
		default:
			r.dropped.Add(1)
			r.logger.Warn("Change relay buffer full, dropping message",
				log.FieldRevision, c.Revision, log.FieldMessageID, msg.ID)
		}
	}
}

// Run publishes queued changes until ctx is done, then flushes what is
// already queued with a short grace period.
func (r *Relay) Run(ctx context.Context) {
	for {
		select {
		case msg := <-r.queue:
			r.publish(ctx, msg)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Relay) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case msg := <-r.queue:
			r.publish(ctx, msg)
		default:
			return
		}
	}
}

func (r *Relay) publish(ctx context.Context, msg ChangeMessage) {
	if err := r.pub.Publish(ctx, msg); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish change message",
			log.FieldError, err,
			log.FieldMessageID, msg.ID,
			log.FieldRevision, msg.Revision,
			log.FieldOperation, log.OpPublish)
		return
	}
	r.sent.Add(1)
}

// Stats reports messages published and dropped so far.
func (r *Relay) Stats() (sent, dropped uint64) {
	return r.sent.Load(), r.dropped.Load()
}
