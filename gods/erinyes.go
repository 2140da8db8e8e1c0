package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Erinyes is the integrity actor: it receives RecoverActor notifications
// relayed after a supervisor restart and keeps an auditable trail of
// which actor was last recovered and under what strategy, answerable via
// ActorStateQuery.
type Erinyes struct {
	*Base
}

func NewErinyes() *Erinyes {
	return &Erinyes{Base: NewBase(message.Erinyes, actor.DomainIntegrity)}
}

func (e *Erinyes) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.RecoverActor:
		e.set("last_recovered_actor", p.Actor.String())
		e.set("last_recovery_strategy", string(p.Strategy))
		e.remember(p.Actor.String()+":"+string(p.Strategy), 100)
		return ackData(msg, "recovery recorded for "+p.Actor.String())
	case message.ActorStateQuery:
		return dataResponse(e.HealthCheck())
	default:
		return nil, unsupported(e.Name(), msg.Payload)
	}
}
