// Package store persists sessions and the game-state flag.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/playperu/cluehunt/internal/hunt"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

var sessionColumns = []string{
	"id", "name", "start_time", "end_time", "total_time", "completed", "current_index",
}

// SQLiteStore implements hunt.SessionStore and hunt.GameStateStore.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) CreateSession(ctx context.Context, name string, start time.Time) (hunt.Session, error) {
	sess := hunt.Session{ID: uuid.NewString(), Name: name, StartTime: start.UTC()}

	query, args, err := sqlBuilder.Insert("sessions").
		Columns("id", "name", "start_time").
		Values(sess.ID, sess.Name, formatTime(sess.StartTime)).
		ToSql()
	if err != nil {
		return hunt.Session{}, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return hunt.Session{}, fmt.Errorf("inserting session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (hunt.Session, error) {
	query, args, err := sqlBuilder.Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return hunt.Session{}, err
	}

	var (
		sess      hunt.Session
		startTime string
		endTime   sql.NullString
		totalTime sql.NullInt64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&sess.ID, &sess.Name, &startTime, &endTime, &totalTime, &sess.Completed, &sess.Index,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return hunt.Session{}, hunt.ErrSessionNotFound
	}
	if err != nil {
		return hunt.Session{}, fmt.Errorf("reading session: %w", err)
	}

	if sess.StartTime, err = parseTime(startTime); err != nil {
		return hunt.Session{}, err
	}
	if endTime.Valid {
		end, err := parseTime(endTime.String)
		if err != nil {
			return hunt.Session{}, err
		}
		sess.EndTime = &end
	}
	if totalTime.Valid {
		sess.TotalTime = &totalTime.Int64
	}
	return sess, nil
}

func (s *SQLiteStore) AdvanceSession(ctx context.Context, id string, expectedIndex, newIndex int) (bool, error) {
	return s.update(ctx, sqlBuilder.Update("sessions").
		Set("current_index", newIndex).
		Where(squirrel.Eq{"id": id, "current_index": expectedIndex, "completed": 0}))
}

func (s *SQLiteStore) FinishSession(ctx context.Context, id string, expectedIndex, newIndex int, end time.Time, totalTime int64) (bool, error) {
	return s.update(ctx, sqlBuilder.Update("sessions").
		Set("current_index", newIndex).
		Set("completed", 1).
		Set("end_time", formatTime(end)).
		Set("total_time", totalTime).
		Where(squirrel.Eq{"id": id, "current_index": expectedIndex, "completed": 0}))
}

func (s *SQLiteStore) CompleteSession(ctx context.Context, id string, end time.Time, totalTime int64) (bool, error) {
	return s.update(ctx, sqlBuilder.Update("sessions").
		Set("completed", 1).
		Set("end_time", formatTime(end)).
		Set("total_time", totalTime).
		Where(squirrel.Eq{"id": id, "completed": 0}))
}

// update runs a conditional UPDATE and reports whether it matched a row.
func (s *SQLiteStore) update(ctx context.Context, b squirrel.UpdateBuilder) (bool, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return false, err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// TopCompletions lists completed sessions by total time. Ties keep
// insertion order.
func (s *SQLiteStore) TopCompletions(ctx context.Context, limit int) ([]hunt.LeaderboardEntry, error) {
	query, args, err := sqlBuilder.Select("id", "name", "total_time", "start_time", "end_time").
		From("sessions").
		Where(squirrel.Eq{"completed": 1}).
		Where(squirrel.NotEq{"total_time": nil}).
		OrderBy("total_time ASC", "rowid ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []hunt.LeaderboardEntry{}
	for rows.Next() {
		var (
			e          hunt.LeaderboardEntry
			start, end string
		)
		if err := rows.Scan(&e.SessionID, &e.Name, &e.TotalTime, &start, &end); err != nil {
			return nil, err
		}
		if e.StartTime, err = parseTime(start); err != nil {
			return nil, err
		}
		if e.EndTime, err = parseTime(end); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Started reads the flag, inserting the stopped row on first use.
func (s *SQLiteStore) Started(ctx context.Context) (bool, error) {
	query, args, err := sqlBuilder.Insert("game_state").
		Options("OR IGNORE").
		Columns("id", "started").
		Values(1, 0).
		ToSql()
	if err != nil {
		return false, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("initializing game state: %w", err)
	}

	query, args, err = sqlBuilder.Select("started").
		From("game_state").
		Where(squirrel.Eq{"id": 1}).
		ToSql()
	if err != nil {
		return false, err
	}
	var started bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&started); err != nil {
		return false, fmt.Errorf("reading game state: %w", err)
	}
	return started, nil
}

func (s *SQLiteStore) SetStarted(ctx context.Context, started bool) (bool, error) {
	query, args, err := sqlBuilder.Insert("game_state").
		Columns("id", "started").
		Values(1, boolInt(started)).
		Suffix("ON CONFLICT(id) DO UPDATE SET started = excluded.started RETURNING started").
		ToSql()
	if err != nil {
		return false, err
	}
	var got bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&got); err != nil {
		return false, fmt.Errorf("writing game state: %w", err)
	}
	return got, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}
