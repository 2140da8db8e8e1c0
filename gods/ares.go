package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Ares is the conflict-resolution actor: RecoverActor here represents a
// request to arbitrate a disputed recovery decision rather than perform
// one itself, recorded for audit, and GetData answers back with the
// arbitration outcome for a given actor name.
type Ares struct {
	*Base
}

func NewAres() *Ares {
	return &Ares{Base: NewBase(message.Ares, actor.DomainConflictResolution)}
}

func (a *Ares) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.RecoverActor:
		a.set("arbitrated:"+p.Actor.String(), string(p.Strategy))
		return ackData(msg, "arbitration recorded for "+p.Actor.String())
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
