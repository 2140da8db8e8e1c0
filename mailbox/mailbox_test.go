package mailbox

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/olympusrt/olympus/message"
	"github.com/olympusrt/olympus/olyerr"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDeliverFillsChannelThenOverflowThenFails(t *testing.T) {
	mb := New(message.Zeus, 2)

	for i := 0; i < 2; i++ {
		if err := mb.Deliver(message.New(message.Zeus, message.HealthStatusQuery{})); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}
	// Channel is now full; the next two deliveries land in the overflow
	// queue (bounded by the same capacity).
	for i := 0; i < 2; i++ {
		if err := mb.Deliver(message.New(message.Zeus, message.HealthStatusQuery{})); err != nil {
			t.Fatalf("overflow deliver %d: %v", i, err)
		}
	}
	if got := mb.Len(); got != 2 {
		t.Fatalf("overflow len = %d, want 2", got)
	}

	err := mb.Deliver(message.New(message.Zeus, message.HealthStatusQuery{}))
	if olyerr.KindOf(err) != olyerr.KindMailboxFull {
		t.Fatalf("kind = %v, want MailboxFull", olyerr.KindOf(err))
	}
}

func TestReceiveDrainsOverflowBeforeChannel(t *testing.T) {
	mb := New(message.Zeus, 1)

	first := message.New(message.Zeus, message.HealthStatusQuery{})
	second := message.New(message.Zeus, message.HealthStatusQuery{})

	if err := mb.Deliver(first); err != nil { // fills the channel
		t.Fatal(err)
	}
	if err := mb.Deliver(second); err != nil { // spills into overflow
		t.Fatal(err)
	}

	done := make(chan struct{})
	got, ok := mb.Receive(done)
	if !ok {
		t.Fatal("expected a message")
	}
	if got.ID != second.ID {
		t.Fatalf("received %s first, want overflow entry %s", got.ID, second.ID)
	}

	got, ok = mb.Receive(done)
	if !ok || got.ID != first.ID {
		t.Fatal("expected the channel-resident message second")
	}
}

func TestDeliverAfterCloseReturnsActorNotRunning(t *testing.T) {
	mb := New(message.Zeus, 1)
	mb.Close()

	err := mb.Deliver(message.New(message.Zeus, message.HealthStatusQuery{}))
	if olyerr.KindOf(err) != olyerr.KindActorNotRunning {
		t.Fatalf("kind = %v, want ActorNotRunning", olyerr.KindOf(err))
	}
}

func TestManagerDeliverToUnknownActorIsNotFound(t *testing.T) {
	mgr := NewManager(4)
	err := mgr.DeliverTo(message.Hades, message.New(message.Hades, message.HealthStatusQuery{}))
	if olyerr.KindOf(err) != olyerr.KindNotFound {
		t.Fatalf("kind = %v, want NotFound", olyerr.KindOf(err))
	}
}

func TestManagerAllStatsReflectsEachMailbox(t *testing.T) {
	mgr := NewManager(4)
	mgr.Create(message.Zeus, 4)
	mgr.Create(message.Hermes, 4)

	if err := mgr.DeliverTo(message.Zeus, message.New(message.Zeus, message.HealthStatusQuery{})); err != nil {
		t.Fatal(err)
	}

	stats := mgr.AllStats()
	if len(stats) != 2 {
		t.Fatalf("stats entries = %d, want 2", len(stats))
	}
	if mgr.TotalDelivered() != 1 {
		t.Fatalf("total delivered = %d, want 1", mgr.TotalDelivered())
	}
}
