package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Hera is the validation actor: RawCommand lets upstream callers submit
// an opaque rule-set to validate against, recorded keyed by its raw kind
// tag, and ActorStateQuery reports back this actor's own health so a
// caller can tell whether validation is currently being performed at all.
type Hera struct {
	*Base
}

func NewHera() *Hera {
	return &Hera{Base: NewBase(message.Hera, actor.DomainValidation)}
}

func (h *Hera) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.RawCommand:
		h.set("last_validation_rule", p.RawKind)
		return ackData(msg, "validation rule recorded: "+p.RawKind)
	case message.ActorStateQuery:
		return dataResponse(h.HealthCheck())
	default:
		return nil, unsupported(h.Name(), msg.Payload)
	}
}
