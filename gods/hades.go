package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Hades occupies the Security domain slot: Configure stores the active
// access policy document and HealthStatusQuery reports whether the actor
// itself is in good standing. Authentication/authorization enforcement is
// out of scope per SPEC_FULL.md Non-goals; this actor is the wiring point
// a real policy engine would hang off.
type Hades struct {
	*Base
}

func NewHades() *Hades {
	return &Hades{Base: NewBase(message.Hades, actor.DomainSecurity)}
}

func (h *Hades) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.Configure:
		h.set("policy", string(p.Config))
		return ackData(msg, "policy updated")
	case message.HealthStatusQuery:
		return dataResponse(h.HealthCheck())
	default:
		return nil, unsupported(h.Name(), msg.Payload)
	}
}
