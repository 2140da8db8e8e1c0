// Package httpapi exposes the reference deployment's operator surface:
// a liveness probe, a JSON status endpoint, an actor roster, and the
// Prometheus exposition endpoint. It deliberately stays on net/http's
// ServeMux rather than adopting a router dependency — SPEC_FULL.md §6
// calls out that four fixed, non-parameterized routes don't earn a
// routing library, mirroring the teacher's own decision to keep its
// surface on the standard library.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olympusrt/olympus/genesis"
	"github.com/olympusrt/olympus/message"
)

// NewMux builds the HTTP surface over a running genesis.Runtime.
func NewMux(rt *genesis.Runtime) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/api/status", statusHandler(rt))
	mux.HandleFunc("/api/actors", actorsHandler(rt))
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("running"))
}

// statusEntry is one actor's row in the /api/status response.
type statusEntry struct {
	Name         message.ActorName `json:"name"`
	Domain       string            `json:"domain"`
	Status       string            `json:"status"`
	MessageCount uint64            `json:"message_count"`
	ErrorCount   uint64            `json:"error_count"`
	LastError    string            `json:"last_error,omitempty"`
}

type statusResponse struct {
	Actors           []statusEntry `json:"actors"`
	RetryQueueDepth  int           `json:"retry_queue_depth"`
	DeadLetterCount  int           `json:"dead_letter_count"`
	HeartbeatAlerts  uint64        `json:"heartbeat_alert_count"`
	GeneratedAt      time.Time     `json:"generated_at"`
}

func statusHandler(rt *genesis.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := make([]statusEntry, 0, len(rt.Actors))
		for _, name := range message.AllActorNames() {
			c, ok := rt.Actors[name]
			if !ok {
				continue
			}
			health := c.HealthCheck()
			entries = append(entries, statusEntry{
				Name:         name,
				Domain:       string(c.Domain()),
				Status:       string(health.Status),
				MessageCount: health.MessageCount,
				ErrorCount:   health.ErrorCount,
				LastError:    health.LastError,
			})
		}

		resp := statusResponse{
			Actors:          entries,
			RetryQueueDepth: rt.RetryQueue.Len(),
			DeadLetterCount: rt.DeadLetters.Len(),
			HeartbeatAlerts: rt.HeartbeatMonitor.AlertCount(),
			GeneratedAt:     time.Now().UTC(),
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func actorsHandler(rt *genesis.Runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records := rt.Supervisor.Records()
		writeJSON(w, http.StatusOK, records)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
