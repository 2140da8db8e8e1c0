package mailbox

import (
	"sync"

	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

// Manager is the shared name→mailbox registry (§9, "Shared registries").
// It is a single owner behind a read-write lock; callers never hold the
// lock across a Deliver call.
type Manager struct {
	mu              sync.RWMutex
	mailboxes       map[message.ActorName]*Mailbox
	defaultCapacity int
}

func NewManager(defaultCapacity int) *Manager {
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultCapacity
	}
	return &Manager{
		mailboxes:       make(map[message.ActorName]*Mailbox),
		defaultCapacity: defaultCapacity,
	}
}

// Create allocates and registers a mailbox for actor, replacing any
// previous one of the same name.
func (mgr *Manager) Create(actor message.ActorName, capacity int) *Mailbox {
	if capacity <= 0 {
		capacity = mgr.defaultCapacity
	}
	mb := New(actor, capacity)
	mgr.mu.Lock()
	mgr.mailboxes[actor] = mb
	mgr.mu.Unlock()
	return mb
}

func (mgr *Manager) Get(actor message.ActorName) (*Mailbox, bool) {
	mgr.mu.RLock()
	defer mgr.mu.RUnlock()
	mb, ok := mgr.mailboxes[actor]
	return mb, ok
}

// DeliverTo looks up actor's mailbox and delivers, without holding the
// registry lock across the delivery itself (§5 lock discipline).
func (mgr *Manager) DeliverTo(actor message.ActorName, msg message.Message) error {
	mb, ok := mgr.Get(actor)
	if !ok {
		return olyerr.New(olyerr.KindNotFound, actor, "no mailbox registered")
	}
	return mb.Deliver(msg)
}

func (mgr *Manager) Remove(actor message.ActorName) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	delete(mgr.mailboxes, actor)
}

func (mgr *Manager) AllStats() []Stats {
	mgr.mu.RLock()
	boxes := make([]*Mailbox, 0, len(mgr.mailboxes))
	for _, mb := range mgr.mailboxes {
		boxes = append(boxes, mb)
	}
	mgr.mu.RUnlock()

	stats := make([]Stats, 0, len(boxes))
	for _, mb := range boxes {
		stats = append(stats, mb.Stats())
	}
	return stats
}

func (mgr *Manager) TotalDelivered() uint64 {
	var total uint64
	for _, s := range mgr.AllStats() {
		total += s.DeliveredCount
	}
	return total
}
