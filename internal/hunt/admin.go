package hunt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playperu/cluehunt/internal/events"
)

// Admin reads and flips the global started flag.
type Admin struct {
	state     GameStateStore
	publisher Publisher
	logger    *slog.Logger
}

func NewAdmin(state GameStateStore, publisher Publisher, logger *slog.Logger) *Admin {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Admin{state: state, publisher: publisher, logger: logger}
}

// State returns the started flag, creating it as false on first read.
func (a *Admin) State(ctx context.Context) (bool, error) {
	started, err := a.state.Started(ctx)
	if err != nil {
		return false, fmt.Errorf("reading game state: %w", err)
	}
	return started, nil
}

// SetState stores started and returns the stored value.
func (a *Admin) SetState(ctx context.Context, started bool) (bool, error) {
	got, err := a.state.SetStarted(ctx, started)
	if err != nil {
		return false, fmt.Errorf("writing game state: %w", err)
	}
	a.logger.Info("game state changed", "started", got)
	a.publisher.Publish(events.GameState(got))
	return got, nil
}
