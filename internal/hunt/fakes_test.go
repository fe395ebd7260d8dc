package hunt_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/playperu/cluehunt/internal/clue"
	"github.com/playperu/cluehunt/internal/events"
	"github.com/playperu/cluehunt/internal/hunt"
)

// memStore is a SessionStore and GameStateStore held in memory with the
// same conditional-update semantics as the SQL store.
type memStore struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*hunt.Session
	order    []string
	started  *bool
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*hunt.Session)}
}

func (m *memStore) CreateSession(_ context.Context, name string, start time.Time) (hunt.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s := &hunt.Session{ID: fmt.Sprintf("s%d", m.seq), Name: name, StartTime: start}
	m.sessions[s.ID] = s
	m.order = append(m.order, s.ID)
	return *s, nil
}

func (m *memStore) GetSession(_ context.Context, id string) (hunt.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return hunt.Session{}, hunt.ErrSessionNotFound
	}
	return *s, nil
}

func (m *memStore) AdvanceSession(_ context.Context, id string, expected, next int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Completed || s.Index != expected {
		return false, nil
	}
	s.Index = next
	return true, nil
}

func (m *memStore) FinishSession(_ context.Context, id string, expected, next int, end time.Time, total int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Completed || s.Index != expected {
		return false, nil
	}
	s.Index = next
	s.Completed, s.EndTime, s.TotalTime = true, &end, &total
	return true, nil
}

func (m *memStore) CompleteSession(_ context.Context, id string, end time.Time, total int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Completed {
		return false, nil
	}
	s.Completed, s.EndTime, s.TotalTime = true, &end, &total
	return true, nil
}

func (m *memStore) TopCompletions(_ context.Context, limit int) ([]hunt.LeaderboardEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []hunt.LeaderboardEntry
	for _, id := range m.order {
		s := m.sessions[id]
		if !s.Completed || s.TotalTime == nil {
			continue
		}
		out = append(out, hunt.LeaderboardEntry{
			SessionID: s.ID, Name: s.Name, TotalTime: *s.TotalTime, StartTime: s.StartTime, EndTime: *s.EndTime,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalTime < out[j].TotalTime })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) Started(context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started == nil {
		f := false
		m.started = &f
	}
	return *m.started, nil
}

func (m *memStore) SetStarted(_ context.Context, started bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = &started
	return started, nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// mockSessionStore scripts store responses for race and failure paths.
type mockSessionStore struct {
	mock.Mock
}

func (m *mockSessionStore) CreateSession(ctx context.Context, name string, start time.Time) (hunt.Session, error) {
	args := m.Called(ctx, name, start)
	return args.Get(0).(hunt.Session), args.Error(1)
}

func (m *mockSessionStore) GetSession(ctx context.Context, id string) (hunt.Session, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(hunt.Session), args.Error(1)
}

func (m *mockSessionStore) AdvanceSession(ctx context.Context, id string, expected, next int) (bool, error) {
	args := m.Called(ctx, id, expected, next)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionStore) FinishSession(ctx context.Context, id string, expected, next int, end time.Time, total int64) (bool, error) {
	args := m.Called(ctx, id, expected, next, end, total)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionStore) CompleteSession(ctx context.Context, id string, end time.Time, total int64) (bool, error) {
	args := m.Called(ctx, id, end, total)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionStore) TopCompletions(ctx context.Context, limit int) ([]hunt.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hunt.LeaderboardEntry), args.Error(1)
}

type stubRenderer struct {
	mu    sync.Mutex
	calls []int
	err   error
}

func (r *stubRenderer) Render(index int) (*clue.Clue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, index)
	if r.err != nil {
		return nil, r.err
	}
	return &clue.Clue{Digit: fmt.Sprint(index), PNG: []byte{0x89, 'P', 'N', 'G'}}, nil
}

var errRenderFailed = errors.New("out of memory")

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// stepClock advances by step on every call.
func stepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := t
		t = t.Add(step)
		return now
	}
}
