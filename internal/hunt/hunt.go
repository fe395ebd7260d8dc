// Package hunt is the game core: the sequential answer protocol, the
// leaderboard and the admin start/stop gate. Persistence is reached only
// through the store interfaces declared here.
package hunt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/playperu/cluehunt/internal/clue"
	"github.com/playperu/cluehunt/internal/events"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrGameNotStarted = errors.New("game has not started")

	ErrSessionNotFound         = fmt.Errorf("session %w", ErrNotFound)
	ErrSessionAlreadyCompleted = fmt.Errorf("session already completed: %w", ErrConflict)
	ErrQuestionMismatch        = fmt.Errorf("answer is not for the current question: %w", ErrConflict)
)

// Session is one player's attempt at the question sequence.
type Session struct {
	ID        string
	Name      string
	StartTime time.Time
	EndTime   *time.Time
	TotalTime *int64
	Completed bool
	Index     int
}

// LeaderboardEntry is a completed session in ranking order.
type LeaderboardEntry struct {
	SessionID string
	Name      string
	TotalTime int64
	StartTime time.Time
	EndTime   time.Time
}

// SessionStore persists sessions. The conditional methods report false
// when the row was not in the expected state, so concurrent callers see
// exactly one winner.
type SessionStore interface {
	CreateSession(ctx context.Context, name string, start time.Time) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	// AdvanceSession moves an uncompleted session from expectedIndex to newIndex.
	AdvanceSession(ctx context.Context, id string, expectedIndex, newIndex int) (bool, error)
	// FinishSession advances past the last question and completes the
	// session in one step.
	FinishSession(ctx context.Context, id string, expectedIndex, newIndex int, end time.Time, totalTime int64) (bool, error)
	// CompleteSession marks a session completed regardless of its index.
	CompleteSession(ctx context.Context, id string, end time.Time, totalTime int64) (bool, error)
	TopCompletions(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// GameStateStore holds the single started flag. Started creates the
// record as false when absent.
type GameStateStore interface {
	Started(ctx context.Context) (bool, error)
	SetStarted(ctx context.Context, started bool) (bool, error)
}

// ClueRenderer renders the clue for a 0-based question index.
type ClueRenderer interface {
	Render(index int) (*clue.Clue, error)
}

// Publisher receives live updates.
type Publisher interface {
	Publish(events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// TotalSeconds is the whole number of seconds between start and end.
func TotalSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
