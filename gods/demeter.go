package gods

import (
	"context"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/mailbox"
	"github.com/olympusrt/olympus/message"
)

// Demeter is the resources actor: it watches mailbox capacity pressure
// across the fleet. Configure records a resource budget note and
// MetricsQuery reports current mailbox depth across every registered
// actor, the closest thing this runtime has to a resource-governor view.
type Demeter struct {
	*Base
	mailboxes *mailbox.Manager
}

func NewDemeter(mgr *mailbox.Manager) *Demeter {
	return &Demeter{Base: NewBase(message.Demeter, actor.DomainResources), mailboxes: mgr}
}

func (d *Demeter) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.Configure:
		d.set("resource_budget", string(p.Config))
		return ackData(msg, "resource budget recorded")
	case message.MetricsQuery:
		var stats []mailbox.Stats
		if d.mailboxes != nil {
			stats = d.mailboxes.AllStats()
		}
		return dataResponse(map[string]any{"mailboxes": stats})
	default:
		return nil, unsupported(d.Name(), msg.Payload)
	}
}
