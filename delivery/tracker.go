// Package delivery implements per-message delivery tracking (§4.3, C5),
// grounded on original_source/src/actors/hermes/delivery.rs's
// DeliveryTracker/DeliveryTrackingHandle split.
package delivery

import (
	"sync"
	"time"

	"github.com/olympusrt/olympus/message"
)

// Status is the per-message delivery status (§3, "DeliveryTracking").
// Delivered and DeadLettered are terminal: once set, they never change
// (testable property 4).
type Status string

const (
	StatusPending      Status = "Pending"
	StatusInTransit    Status = "InTransit"
	StatusDelivered    Status = "Delivered"
	StatusFailed       Status = "Failed"
	StatusDeadLettered Status = "DeadLettered"
)

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusDeadLettered
}

// Tracking is one message's delivery record.
type Tracking struct {
	MessageID   string
	To          message.ActorName
	Status      Status
	StartedAt   time.Time
	DeliveredAt time.Time
	Attempts    uint32
	LastError   string
}

// Tracker is the shared message-id→Tracking registry.
type Tracker struct {
	mu        sync.RWMutex
	trackings map[string]*Tracking
}

func NewTracker() *Tracker {
	return &Tracker{trackings: make(map[string]*Tracking)}
}

// StartTracking registers a new in-transit tracking for messageID,
// returning a Handle scoped to that id.
func (t *Tracker) StartTracking(messageID string, to message.ActorName) *Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trackings[messageID] = &Tracking{
		MessageID: messageID,
		To:        to,
		Status:    StatusInTransit,
		StartedAt: time.Now().UTC(),
	}
	return &Handle{messageID: messageID, tracker: t}
}

func (t *Tracker) mutate(messageID string, fn func(*Tracking)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tr, ok := t.trackings[messageID]
	if !ok {
		return
	}
	// Once a message reaches a terminal state it does not change
	// (testable property 4): refuse further mutation.
	if tr.Status.Terminal() {
		return
	}
	fn(tr)
}

func (t *Tracker) RecordDelivery(messageID string) {
	t.mutate(messageID, func(tr *Tracking) {
		tr.Status = StatusDelivered
		tr.DeliveredAt = time.Now().UTC()
	})
}

func (t *Tracker) RecordFailure(messageID, errMsg string) {
	t.mutate(messageID, func(tr *Tracking) {
		tr.Attempts++
		tr.LastError = errMsg
		tr.Status = StatusFailed
	})
}

func (t *Tracker) RecordDeadLetter(messageID string) {
	t.mutate(messageID, func(tr *Tracking) {
		tr.Status = StatusDeadLettered
	})
}

func (t *Tracker) Get(messageID string) (Tracking, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tr, ok := t.trackings[messageID]
	if !ok {
		return Tracking{}, false
	}
	return *tr, true
}

func (t *Tracker) countWhere(pred func(Status) bool) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n uint64
	for _, tr := range t.trackings {
		if pred(tr.Status) {
			n++
		}
	}
	return n
}

func (t *Tracker) DeliveredCount() uint64 {
	return t.countWhere(func(s Status) bool { return s == StatusDelivered })
}

func (t *Tracker) FailedCount() uint64 {
	return t.countWhere(func(s Status) bool { return s == StatusFailed })
}

func (t *Tracker) PendingCount() uint64 {
	return t.countWhere(func(s Status) bool { return s == StatusPending || s == StatusInTransit })
}

func (t *Tracker) FailedMessages() []Tracking {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Tracking
	for _, tr := range t.trackings {
		if tr.Status == StatusFailed {
			out = append(out, *tr)
		}
	}
	return out
}

// CleanupOlderThan removes trackings started before the cutoff. It helps
// bound memory on long-running deployments without affecting the
// terminal-state invariant of live trackings.
func (t *Tracker) CleanupOlderThan(maxAge time.Duration) {
	cutoff := time.Now().UTC().Add(-maxAge)
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, tr := range t.trackings {
		if tr.StartedAt.Before(cutoff) {
			delete(t.trackings, id)
		}
	}
}

// Handle scopes delivery-recording calls to the message id it was created
// for, mirroring DeliveryTrackingHandle in the original source.
type Handle struct {
	messageID string
	tracker   *Tracker
}

func (h *Handle) RecordDelivery()          { h.tracker.RecordDelivery(h.messageID) }
func (h *Handle) RecordFailure(msg string) { h.tracker.RecordFailure(h.messageID, msg) }

func (h *Handle) IncrementAttempt() {
	h.tracker.mutate(h.messageID, func(tr *Tracking) {
		tr.Attempts++
	})
}

func (h *Handle) Attempts() uint32 {
	tr, ok := h.tracker.Get(h.messageID)
	if !ok {
		return 0
	}
	return tr.Attempts
}
