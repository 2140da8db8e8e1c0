package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Moirai is the predictions actor: StartActor here represents "begin
// tracking a projection for this actor" rather than a literal lifecycle
// command, appending to a rolling log that GetHistory replays as the
// basis of a (deliberately simple) trend projection.
type Moirai struct {
	*Base
}

func NewMoirai() *Moirai {
	return &Moirai{Base: NewBase(message.Moirai, actor.DomainPredictions)}
}

func (m *Moirai) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.StartActor:
		m.remember(p.Actor.String(), 1000)
		return ackData(msg, "tracking started for "+p.Actor.String())
	case message.GetHistory:
		limit := int(p.Limit)
		if limit == 0 {
			limit = 20
		}
		return dataResponse(m.recent(limit))
	default:
		return nil, unsupported(m.Name(), msg.Payload)
	}
}
