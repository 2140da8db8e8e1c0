package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Aphrodite occupies the UI domain slot: Configure stores a read-model
// preference document (e.g. a dashboard layout) and GetData serves it
// back, standing in for whatever presentation-layer state a frontend
// would keep.
type Aphrodite struct {
	*Base
}

func NewAphrodite() *Aphrodite {
	return &Aphrodite{Base: NewBase(message.Aphrodite, actor.DomainUI)}
}

func (a *Aphrodite) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.Configure:
		a.set("ui_preferences", string(p.Config))
		return ackData(msg, "ui preferences stored")
	case message.GetData:
		v, ok := a.get(p.Key)
		if !ok {
			return dataResponse(map[string]any{"key": p.Key, "found": false})
		}
		return dataResponse(map[string]any{"key": p.Key, "found": true, "value": v})
	default:
		return nil, unsupported(a.Name(), msg.Payload)
	}
}
