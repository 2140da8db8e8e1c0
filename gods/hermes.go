package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/mailbox"
	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/router"
)

// Hermes is the messaging actor (§3.1, §4.4): SendMessage resolves a
// destination via the shared Router and delivers through the shared
// mailbox.Manager, and GetConfig reports how many routes are registered.
// The retry queue, delivery tracker, and broadcaster that also belong to
// Hermes's domain are wired by genesis as standalone components rather
// than through this actor's mailbox, since they run their own background
// loops (§4.5, §4.3, §4.4).
type Hermes struct {
	*Base
	router   *router.Router
	mailbox  *mailbox.Manager
}

func NewHermes(rt *router.Router, mgr *mailbox.Manager) *Hermes {
	return &Hermes{Base: NewBase(message.Hermes, actor.DomainMessaging), router: rt, mailbox: mgr}
}

func (h *Hermes) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.SendMessage:
		to := p.To
		if h.router != nil {
			if resolved, ok := h.router.Route(p.To); ok {
				to = resolved
			}
		}
		if h.mailbox == nil || p.Message == nil {
			return ackData(msg, "no mailbox manager wired; message dropped")
		}
		if err := h.mailbox.DeliverTo(to, *p.Message); err != nil {
			return nil, err
		}
		return ackData(msg, "delivered to "+to.String())
	case message.GetConfig:
		routes := 0
		if h.router != nil {
			routes = h.router.RouteCount()
		}
		return dataResponse(map[string]any{"registered_routes": routes})
	default:
		return nil, unsupported(h.Name(), msg.Payload)
	}
}
