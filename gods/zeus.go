package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Zeus is the top-level governance actor (§3.1): EmergencyShutdown is the
// one command every deployment must honour even outside the supervision
// tree's own restart machinery, and ListActors answers "what is running"
// for the HTTP status surface.
type Zeus struct {
	*Base
}

func NewZeus() *Zeus {
	return &Zeus{Base: NewBase(message.Zeus, actor.DomainGovernance)}
}

func (z *Zeus) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.EmergencyShutdown:
		z.set("last_shutdown_reason", p.Reason)
		return ackData(msg, "emergency shutdown recorded: "+p.Reason)
	case message.ListActors:
		return dataResponse(message.AllActorNames())
	default:
		return nil, unsupported(z.Name(), msg.Payload)
	}
}
