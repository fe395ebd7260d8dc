package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/playperu/cluehunt/internal/events"
	"github.com/playperu/cluehunt/internal/hunt"
)

// handleEvents streams broker events as SSE. The first event is the
// current game state so a fresh client needs no separate fetch.
func handleEvents(logger *slog.Logger, broker *events.Broker, admin *hunt.Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		started, err := admin.State(r.Context())
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		ch := broker.Subscribe()
		defer broker.Unsubscribe(ch)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		snapshot, _ := json.Marshal(events.GameState(started))
		writeEvent(w, snapshot)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				writeEvent(w, data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, data []byte) {
	fmt.Fprintf(w, "data: %s\n\n", data)
}
