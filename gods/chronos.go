package gods

import (
	"context"
	"strconv"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/heartbeat"
	"github.com/olympusrt/olympus/message"
)

// Chronos drives the heartbeat monitor (§4.7, C10). ConfigureHeartbeat
// records the requested interval for observability (the interval is
// actually enforced by genesis's heartbeat-ticker goroutine, not by this
// actor), and MetricsQuery reports the monitor's current unhealthy-actor
// count.
type Chronos struct {
	*Base
	monitor *heartbeat.Monitor
	known   []message.ActorName
}

func NewChronos(monitor *heartbeat.Monitor, known []message.ActorName) *Chronos {
	return &Chronos{Base: NewBase(message.Chronos, actor.DomainScheduling), monitor: monitor, known: known}
}

func (c *Chronos) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.ConfigureHeartbeat:
		c.set("configured_interval_ms", strconv.FormatUint(p.IntervalMS, 10))
		return ackData(msg, "heartbeat interval preference recorded")
	case message.MetricsQuery:
		alerts := uint64(0)
		unhealthy := 0
		if c.monitor != nil {
			alerts = c.monitor.AlertCount()
			unhealthy = len(c.monitor.Unhealthy(c.known))
		}
		return dataResponse(map[string]any{"alert_count": alerts, "currently_unhealthy": unhealthy})
	default:
		return nil, unsupported(c.Name(), msg.Payload)
	}
}
