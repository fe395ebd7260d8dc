package hunt

import (
	"context"
	"fmt"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// Leaderboard ranks completed sessions, fastest first. Ties keep
// insertion order.
type Leaderboard struct {
	sessions     SessionStore
	defaultLimit int
}

func NewLeaderboard(sessions SessionStore, defaultLimit int) *Leaderboard {
	if defaultLimit < 1 {
		defaultLimit = DefaultLeaderboardLimit
	}
	return &Leaderboard{sessions: sessions, defaultLimit: defaultLimit}
}

// Top returns up to limit entries. A non-positive limit uses the default;
// limits above MaxLeaderboardLimit are capped.
func (l *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit < 1 {
		limit = l.defaultLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	entries, err := l.sessions.TopCompletions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	return entries, nil
}
