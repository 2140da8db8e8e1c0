// Package metrics defines the Prometheus instrumentation carried as
// ambient stack (§0 of SPEC_FULL.md) regardless of the distilled spec's
// Non-goals: messages processed, errors, restarts, dead-letters, mailbox
// depth, retry queue depth, and heartbeat misses. Grounded on
// amp-labs-amp-common/actor/metrics.go and pool/metrics.go's promauto
// style: package-level vectors labelled by actor/subsystem name.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "olympus_messages_processed_total",
		Help: "The total number of messages successfully handled per actor.",
	}, []string{"actor"})

	MessageErrors = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "olympus_message_errors_total",
		Help: "The total number of handler errors per actor.",
	}, []string{"actor"})

	RestartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "olympus_restarts_total",
		Help: "The total number of supervised restarts per child actor.",
	}, []string{"actor"})

	DeadLettersTotal = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "olympus_dead_letters_total",
		Help: "The total number of messages moved to the dead-letter queue.",
	}, []string{"actor"})

	MailboxDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "olympus_mailbox_depth",
		Help: "The current overflow-queue depth per actor mailbox.",
	}, []string{"actor"})

	RetryQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "olympus_retry_queue_depth",
		Help: "The current number of messages awaiting redelivery.",
	})

	HeartbeatMisses = promauto.NewCounterVec(prometheus.CounterOpts{ //nolint:gochecknoglobals
		Name: "olympus_heartbeat_misses_total",
		Help: "The total number of HeartbeatMissed events raised per actor.",
	}, []string{"actor"})

	ActorsAlive = promauto.NewGauge(prometheus.GaugeOpts{ //nolint:gochecknoglobals
		Name: "olympus_actors_alive",
		Help: "The current number of actors in a non-Dead lifecycle state.",
	})
)
