package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Aurora is the new-beginnings actor: RecoverActor here represents a
// cold-start re-provisioning request (as opposed to Erinyes's audit trail
// or Ares's arbitration), and ActorStateQuery reports Aurora's own
// health.
type Aurora struct {
	*Base
}

func NewAurora() *Aurora {
	return &Aurora{Base: NewBase(message.Aurora, actor.DomainNewBeginnings)}
}

func (a *Aurora) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.RecoverActor:
		a.set("last_reprovisioned", p.Actor.String())
		return ackData(msg, "re-provisioning scheduled for "+p.Actor.String())
	case message.ActorStateQuery:
		return dataResponse(a.HealthCheck())
	default:
		return nil, unsupported(a.Name(), msg.Payload)
	}
}
