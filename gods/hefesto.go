package gods

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/olympusrt/olympus/actor"
	"github.com/olympusrt/olympus/config"
	"github.com/olympusrt/olympus/message"
)

// Hefesto owns the live RuntimeConfig snapshot. Configure replaces it
// wholesale (the same replacement cmd/olympus applies through ApplyConfig
// when config.Watcher reloads the file) and GetConfig reports the current
// values back as JSON.
type Hefesto struct {
	*Base

	mu  sync.RWMutex
	cfg *config.RuntimeConfig
}

func NewHefesto(initial *config.RuntimeConfig) *Hefesto {
	if initial == nil {
		initial = config.Default()
	}
	return &Hefesto{Base: NewBase(message.Hefesto, actor.DomainConfiguration), cfg: initial}
}

// ApplyConfig is called by cmd/olympus's config.Watcher callback to keep
// Hefesto's view in sync with the on-disk file, independent of any
// Configure command traffic routed through the mailbox.
func (h *Hefesto) ApplyConfig(next *config.RuntimeConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = next
}

func (h *Hefesto) HandleMessage(ctx context.Context, msg message.Message) (message.ResponsePayload, error) {
	switch p := msg.Payload.(type) {
	case message.Configure:
		var next config.RuntimeConfig
		if err := json.Unmarshal(p.Config, &next); err != nil {
			return nil, invalidCommand(h.Name(), p)
		}
		h.mu.Lock()
		h.cfg = &next
		h.mu.Unlock()
		return ackData(msg, "runtime configuration replaced")
	case message.GetConfig:
		h.mu.RLock()
		cfg := h.cfg.Clone()
		h.mu.RUnlock()
		return dataResponse(cfg)
	default:
		return nil, unsupported(h.Name(), msg.Payload)
	}
}
