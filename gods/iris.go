package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Iris is the communications actor: SendMessage here represents an
// outbound notification (email, webhook, push) rather than an internal
// actor-to-actor relay, logged to a recent-sends history that GetHistory
// replays.
type Iris struct {
	*Base
}

func NewIris() *Iris {
	return &Iris{Base: NewBase(message.Iris, actor.DomainCommunications)}
}

func (i *Iris) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.SendMessage:
		i.remember(p.To.String(), 200)
		return ackData(msg, "notification queued for "+p.To.String())
	case message.GetHistory:
		limit := int(p.Limit)
		if limit == 0 {
			limit = 20
		}
		return dataResponse(i.recent(limit))
	default:
		return nil, unsupported(i.Name(), msg.Payload)
	}
}
