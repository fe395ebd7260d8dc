// Package live streams game events to WebSocket clients.
package live

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"

	"github.com/playperu/cluehunt/internal/events"
)

const writeTimeout = 5 * time.Second

type Handler struct {
	broker *events.Broker
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, broker *events.Broker) *Handler {
	return &Handler{broker: broker, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/live", h.feed)
	return r
}

// feed forwards every broker event as a text frame. Client messages are
// ignored; the feed ends when the client closes or a write stalls.
func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ch := h.broker.Subscribe()
	defer h.broker.Unsubscribe(ch)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("live feed closed", "error", ctx.Err())
			return
		case msg := <-ch:
			if err := write(ctx, conn, msg); err != nil {
				h.logger.Debug("live feed write failed", "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}
