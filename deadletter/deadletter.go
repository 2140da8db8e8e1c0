// Package deadletter implements the terminal holding store for messages
// that exhausted retries or failed with a non-retryable error (§4.5, C8),
// grounded on original_source/olympus-server/src/actors/erinyes/
// dead_letter.rs's push/pop/mark-delivered/mark-retrying shape. Unlike
// the original's hardcoded Valkey client, this queue is backed by the
// durable.Store interface so it can run against sqlite or an in-memory
// fake under test, while preserving the distilled spec's KV key scheme
// (§6): "dlq:queue" and "dlq:data:<id>".
package deadletter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

// Status is a dead letter's lifecycle (§3, "DeadLetter").
type Status string

const (
	StatusPending   Status = "Pending"
	StatusRetrying  Status = "Retrying"
	StatusDelivered Status = "Delivered"
	StatusAbandoned Status = "Abandoned"
)

const (
	KeyQueue     = "dlq:queue"
	keyDataPrefix = "dlq:data:"
)

func keyData(id string) string { return keyDataPrefix + id }

// DeadLetter is a terminal holding record for a message that exceeded
// max attempts, or failed with a non-retryable error (§3).
type DeadLetter struct {
	MessageID  string          `json:"message_id"`
	Message    json.RawMessage `json:"message"`
	Original   message.ActorName `json:"original_destination"`
	FailedAt   time.Time       `json:"failed_at"`
	Attempts   int             `json:"attempts"`
	LastError  string          `json:"last_error"`
	Status     Status          `json:"status"`
}

// KV is the minimal durable key-value surface the queue needs. It is
// satisfied by durable.Store's KV methods, kept narrow here so this
// package has no import-time dependency on the concrete store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Queue is the dead-letter queue (§4.5, C8): push, pop, length, and
// mark-delivered/mark-retrying transitions over a durable KV store, with
// an in-memory index of ids for fast Len/List.
type Queue struct {
	mu    sync.Mutex
	kv    KV
	ids   []string
	index map[string]int
}

func NewQueue(kv KV) *Queue {
	return &Queue{kv: kv, index: make(map[string]int)}
}

// Push records a new dead letter and appends its id to "dlq:queue".
func (q *Queue) Push(ctx context.Context, dl DeadLetter) error {
	if dl.Status == "" {
		dl.Status = StatusPending
	}
	data, err := json.Marshal(dl)
	if err != nil {
		return olyerr.Wrap(olyerr.KindPersistenceError, dl.Original, "marshal dead letter", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.kv.Set(ctx, keyData(dl.MessageID), data); err != nil {
		return olyerr.Wrap(olyerr.KindPersistenceError, dl.Original, "persist dead letter", err)
	}
	if _, exists := q.index[dl.MessageID]; !exists {
		q.index[dl.MessageID] = len(q.ids)
		q.ids = append(q.ids, dl.MessageID)
		if err := q.persistQueueLocked(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queue) persistQueueLocked(ctx context.Context) error {
	data, err := json.Marshal(q.ids)
	if err != nil {
		return olyerr.Wrap(olyerr.KindPersistenceError, "", "marshal dlq index", err)
	}
	if err := q.kv.Set(ctx, KeyQueue, data); err != nil {
		return olyerr.Wrap(olyerr.KindPersistenceError, "", "persist dlq index", err)
	}
	return nil
}

// Pop removes and returns the oldest dead letter, ok=false if empty.
func (q *Queue) Pop(ctx context.Context) (DeadLetter, bool, error) {
	q.mu.Lock()
	if len(q.ids) == 0 {
		q.mu.Unlock()
		return DeadLetter{}, false, nil
	}
	id := q.ids[0]
	q.ids = q.ids[1:]
	delete(q.index, id)
	for k, v := range q.index {
		q.index[k] = v - 1
	}
	if err := q.persistQueueLocked(ctx); err != nil {
		q.mu.Unlock()
		return DeadLetter{}, false, err
	}
	q.mu.Unlock()

	raw, ok, err := q.kv.Get(ctx, keyData(id))
	if err != nil {
		return DeadLetter{}, false, olyerr.Wrap(olyerr.KindPersistenceError, "", "read dead letter", err)
	}
	if !ok {
		return DeadLetter{}, false, nil
	}
	var dl DeadLetter
	if err := json.Unmarshal(raw, &dl); err != nil {
		return DeadLetter{}, false, olyerr.Wrap(olyerr.KindPersistenceError, "", "unmarshal dead letter", err)
	}
	return dl, true, nil
}

// Len reports the number of dead letters currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ids)
}

// Get returns the stored dead letter for id without removing it.
func (q *Queue) Get(ctx context.Context, id string) (DeadLetter, bool, error) {
	raw, ok, err := q.kv.Get(ctx, keyData(id))
	if err != nil {
		return DeadLetter{}, false, olyerr.Wrap(olyerr.KindPersistenceError, "", "read dead letter", err)
	}
	if !ok {
		return DeadLetter{}, false, nil
	}
	var dl DeadLetter
	if err := json.Unmarshal(raw, &dl); err != nil {
		return DeadLetter{}, false, err
	}
	return dl, true, nil
}

func (q *Queue) transition(ctx context.Context, id string, status Status) error {
	dl, ok, err := q.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return olyerr.New(olyerr.KindNotFound, "", "dead letter "+id+" not found")
	}
	dl.Status = status
	data, err := json.Marshal(dl)
	if err != nil {
		return err
	}
	return q.kv.Set(ctx, keyData(id), data)
}

// MarkDelivered transitions a dead letter to Delivered, e.g. after a
// manual operator replay succeeds.
func (q *Queue) MarkDelivered(ctx context.Context, id string) error {
	return q.transition(ctx, id, StatusDelivered)
}

// MarkRetrying transitions a dead letter to Retrying, e.g. when an
// operator requeues it through the retry engine.
func (q *Queue) MarkRetrying(ctx context.Context, id string) error {
	return q.transition(ctx, id, StatusRetrying)
}

// MarkAbandoned transitions a dead letter to its final Abandoned state.
func (q *Queue) MarkAbandoned(ctx context.Context, id string) error {
	return q.transition(ctx, id, StatusAbandoned)
}
