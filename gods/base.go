// Package gods implements the twenty actors of the reference deployment
// (SPEC_FULL.md §3.1): one small actor.Contract per named god, each
// genuinely exercising the core (heartbeat, health check, persistent
// state round-trip, and at least one Command and one Query), with
// domain logic for the excluded clinical entities deliberately left out
// per §1's Out-of-scope / Non-goals.
package gods

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/heartbeat"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

// Base carries the bookkeeping every god shares: actor.State wiring, a
// generic string→string data store used for PersistentState/LoadState
// round-trips, and a small recent-event ring buffer for the gods whose
// Query case is "recall my last N inputs" (Apollo, Iris, Moirai).
type Base struct {
	name   message.ActorName
	domain actor.Domain

	state *actor.State

	mu      sync.RWMutex
	data    map[string]string
	history []string
}

func NewBase(name message.ActorName, domain actor.Domain) *Base {
	return &Base{
		name:   name,
		domain: domain,
		state:  actor.NewState(name),
		data:   make(map[string]string),
	}
}

func (b *Base) Name() message.ActorName { return b.name }
func (b *Base) Domain() actor.Domain    { return b.domain }

// State exposes the underlying actor.State for wiring into actor.Runner;
// it is not part of actor.Contract.
func (b *Base) State() *actor.State { return b.state }

func (b *Base) Initialize(ctx context.Context) error {
	b.state.SetLifecycle(actor.LifecycleInitialized)
	return nil
}

func (b *Base) Shutdown(ctx context.Context) error {
	return nil
}

func (b *Base) Heartbeat() heartbeat.Record {
	snap := b.state.Snapshot()
	uptime := uint64(0)
	if !snap.StartedAt.IsZero() {
		uptime = uint64(time.Since(snap.StartedAt).Seconds())
	}
	return heartbeat.Record{
		Actor:         b.name,
		LastSeen:      time.Now().UTC(),
		Status:        string(snap.Status),
		Load:          0,
		UptimeSeconds: uptime,
	}
}

func (b *Base) HealthCheck() actor.HealthStatus {
	snap := b.state.Snapshot()
	uptime := uint64(0)
	if !snap.StartedAt.IsZero() {
		uptime = uint64(time.Since(snap.StartedAt).Seconds())
	}
	return actor.HealthStatus{
		Actor:         b.name,
		Status:        snap.Status,
		UptimeSeconds: uptime,
		MessageCount:  snap.MessagesProcessed,
		ErrorCount:    snap.Errors,
		LastError:     snap.LastError,
	}
}

func (b *Base) PersistentState() (json.RawMessage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return json.Marshal(b.data)
}

func (b *Base) LoadState(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	restored := make(map[string]string)
	if err := json.Unmarshal(raw, &restored); err != nil {
		return olyerr.Wrap(olyerr.KindInvalidMessage, b.name, "load persisted state", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = restored
	return nil
}

func (b *Base) set(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
}

func (b *Base) get(key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

func (b *Base) remember(entry string, limit int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, entry)
	if len(b.history) > limit {
		b.history = b.history[len(b.history)-limit:]
	}
}

func (b *Base) recent(limit int) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if limit <= 0 || limit > len(b.history) {
		limit = len(b.history)
	}
	out := make([]string, limit)
	copy(out, b.history[len(b.history)-limit:])
	return out
}

// ackData is the common shape returned from a command that simply
// acknowledges with a freeform note, used by most of the gods' Command
// cases.
func ackData(msg message.Message, note string) (message.ResponsePayload, error) {
	data, err := json.Marshal(map[string]string{"note": note})
	if err != nil {
		return nil, err
	}
	return message.SuccessResponse{Data: data}, nil
}

func dataResponse(v any) (message.ResponsePayload, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return message.DataResponse{Data: data}, nil
}

func invalidCommand(actorName message.ActorName, payload message.Payload) error {
	return olyerr.New(olyerr.KindInvalidCommand, actorName, fmt.Sprintf("unsupported command %q", payload.Kind()))
}

func invalidQuery(actorName message.ActorName, payload message.Payload) error {
	return olyerr.New(olyerr.KindInvalidQuery, actorName, fmt.Sprintf("unsupported query %q", payload.Kind()))
}

// unsupported classifies payload by variant so a default switch case can
// report InvalidCommand vs InvalidQuery without the caller needing to
// track which one it fell through from.
func unsupported(actorName message.ActorName, payload message.Payload) error {
	switch payload.(type) {
	case message.QueryPayload:
		return invalidQuery(actorName, payload)
	default:
		return invalidCommand(actorName, payload)
	}
}
