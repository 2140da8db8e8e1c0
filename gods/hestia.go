package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/durable"
	"github.com/olympusrt/olympus/message"
)

// Hestia is the persistence actor: Configure writes straight through to
// the durable.Store (bypassing Poseidon's write-behind buffer, for data
// that must be durable before the command completes) and GetData reads
// it back. It is also the actor most directly exercising
// PersistentState/LoadState, since "the hearth" is the natural home for
// a snapshot/restore smoke test.
type Hestia struct {
	*Base
	store durable.Store
}

func NewHestia(store durable.Store) *Hestia {
	return &Hestia{Base: NewBase(message.Hestia, actor.DomainPersistence), store: store}
}

func (h *Hestia) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.Configure:
		if h.store != nil {
			if err := h.store.Set(ctx, "hestia:snapshot", p.Config); err != nil {
				return nil, err
			}
		}
		h.set("last_snapshot_at", msg.Timestamp.String())
		return ackData(msg, "durable snapshot written")
	case message.GetData:
		if h.store == nil {
			return dataResponse(map[string]any{"key": p.Key, "found": false})
		}
		row, ok, err := h.store.Get(ctx, "hestia:snapshot")
		if err != nil || !ok {
			return dataResponse(map[string]any{"key": p.Key, "found": false})
		}
		return dataResponse(map[string]any{"key": p.Key, "found": true, "value": string(row)})
	default:
		return nil, unsupported(h.Name(), msg.Payload)
	}
}
