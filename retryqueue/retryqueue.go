// Package retryqueue implements the retry engine (§4.5): exponential
// backoff with per-message attempt accounting, grounded on
// original_source/src/actors/hermes/retry.rs's RetryQueue/RetryWorker.
package retryqueue

import (
	"context"
	"sync"
	"time"

	"github.com/olympusrt/olympus/backoff"
	"github.com/olympusrt/olympus/delivery"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

// Config holds the §6 retry tuning options.
type Config struct {
	MaxAttempts       int
	InitialDelayMS    int
	MaxDelayMS        int
	BackoffMultiplier float64
	RetryableErrors   map[olyerr.Kind]bool
}

// DefaultConfig returns the §6 defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialDelayMS:    100,
		MaxDelayMS:        5000,
		BackoffMultiplier: 2.0,
		RetryableErrors: map[olyerr.Kind]bool{
			olyerr.KindTimeout:          true,
			olyerr.KindConnectionLost:   true,
			olyerr.KindMailboxFull:      true,
			olyerr.KindPersistenceError: true,
		},
	}
}

func (c Config) policy() backoff.Policy {
	return backoff.Policy{
		Initial:    time.Duration(c.InitialDelayMS) * time.Millisecond,
		Max:        time.Duration(c.MaxDelayMS) * time.Millisecond,
		Multiplier: c.BackoffMultiplier,
	}
}

// Entry wraps a Message awaiting retry (§3, "RetryEntry").
type Entry struct {
	Message     message.Message
	To          message.ActorName
	Attempts    int
	NextRetryAt time.Time
	LastError   string
}

// DeliverFunc attempts (re-)delivery of a message to its destination.
type DeliverFunc func(ctx context.Context, msg message.Message, to message.ActorName) error

// DeadLetterFunc records a terminal dead-letter for an entry that has
// exhausted its attempts.
type DeadLetterFunc func(entry Entry)

// Queue is the in-memory retry queue. On delivery failure with a
// retryable error, a message is enqueued with attempts=1 (§4.5). A
// background tick (Queue.Tick) scans due entries.
type Queue struct {
	mu      sync.Mutex
	entries map[string]*Entry
	cfg     Config
	tracker *delivery.Tracker
	now     func() time.Time
}

func NewQueue(cfg Config, tracker *delivery.Tracker) *Queue {
	return &Queue{
		entries: make(map[string]*Entry),
		cfg:     cfg,
		tracker: tracker,
		now:     time.Now,
	}
}

// Enqueue adds msg for retry after the initial delay, per §4.5 step 1.
// The caller is expected to have already established that err is
// retryable (olyerr.IsRetryable).
func (q *Queue) Enqueue(msg message.Message, to message.ActorName, lastErr string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[msg.ID] = &Entry{
		Message:     msg,
		To:          to,
		Attempts:    1,
		NextRetryAt: q.now().Add(q.cfg.policy().Delay(1)),
		LastError:   lastErr,
	}
}

// Retryable reports whether err should go to the retry queue rather than
// straight to dead-letter (§4.5, "Non-retryable errors skip the retry
// queue").
func (q *Queue) Retryable(err error) bool {
	kind := olyerr.KindOf(err)
	if kind == "" {
		return false
	}
	if allowed, ok := q.cfg.RetryableErrors[kind]; ok {
		return allowed
	}
	return olyerr.IsRetryable(err)
}

// Len reports the number of entries currently awaiting retry.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, *e)
	}
	return out
}

// Tick scans due entries and attempts redelivery via deliver, dead-
// lettering any entry whose attempts have reached the configured maximum
// (§4.5 step 2).
func (q *Queue) Tick(ctx context.Context, deliver DeliverFunc, deadLetter DeadLetterFunc) {
	now := q.now()

	q.mu.Lock()
	due := make([]string, 0)
	for id, e := range q.entries {
		if !now.Before(e.NextRetryAt) {
			due = append(due, id)
		}
	}
	q.mu.Unlock()

	for _, id := range due {
		q.processOne(ctx, id, deliver, deadLetter)
	}
}

func (q *Queue) processOne(ctx context.Context, id string, deliver DeliverFunc, deadLetter DeadLetterFunc) {
	q.mu.Lock()
	e, ok := q.entries[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	if e.Attempts >= q.cfg.MaxAttempts {
		delete(q.entries, id)
		entryCopy := *e
		q.mu.Unlock()

		q.tracker.RecordDeadLetter(id)
		if deadLetter != nil {
			deadLetter(entryCopy)
		}
		return
	}
	msg, to := e.Message, e.To
	q.mu.Unlock()

	err := deliver(ctx, msg, to)

	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok = q.entries[id]
	if !ok {
		return
	}
	if err == nil {
		delete(q.entries, id)
		q.tracker.RecordDelivery(id)
		return
	}

	e.Attempts++
	e.LastError = err.Error()
	e.NextRetryAt = q.now().Add(q.cfg.policy().Delay(e.Attempts))
	q.tracker.RecordFailure(id, err.Error())
}

// Clear removes all pending entries.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = make(map[string]*Entry)
}

// Worker drives Queue.Tick on a fixed interval (§4.5: "a background worker
// scans due entries at a fixed tick, default 100ms").
type Worker struct {
	queue    *Queue
	interval time.Duration
	deliver  DeliverFunc
	onDead   DeadLetterFunc

	stop chan struct{}
	done chan struct{}
}

func NewWorker(queue *Queue, interval time.Duration, deliver DeliverFunc, onDead DeadLetterFunc) *Worker {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Worker{
		queue:    queue,
		interval: interval,
		deliver:  deliver,
		onDead:   onDead,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run drives the tick loop until ctx is cancelled or Stop is called. It
// is meant to be launched with `go worker.Run(ctx)` from genesis.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.queue.Tick(ctx, w.deliver, w.onDead)
		}
	}
}

// Stop signals Run to exit and blocks until it has.
func (w *Worker) Stop() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.done
}
