package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/message"
)

// Apollo is the events actor: Broadcast commands it receives (relayed via
// Hermes's broadcaster) are appended to a bounded recent-events log that
// GetHistory replays.
type Apollo struct {
	*Base
}

func NewApollo() *Apollo {
	return &Apollo{Base: NewBase(message.Apollo, actor.DomainEvents)}
}

func (a *Apollo) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.Broadcast:
		id := ""
		if p.Message != nil {
			id = p.Message.ID
		}
		a.remember(id, 500)
		return ackData(msg, "event recorded")
	case message.GetHistory:
		limit := int(p.Limit)
		if limit == 0 {
			limit = 20
		}
		return dataResponse(a.recent(limit))
	default:
		return nil, unsupported(a.Name(), msg.Payload)
	}
}
