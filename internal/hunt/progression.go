package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/playperu/cluehunt/internal/clue"
	"github.com/playperu/cluehunt/internal/events"
	"github.com/playperu/cluehunt/internal/quiz"
)

const maxNameLength = 64

// Controller enforces the sequential answer protocol for sessions.
type Controller struct {
	bank      *quiz.Bank
	clues     ClueRenderer
	sessions  SessionStore
	state     GameStateStore
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

type ControllerOption func(*Controller)

func WithPublisher(p Publisher) ControllerOption {
	return func(c *Controller) { c.publisher = p }
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

func NewController(bank *quiz.Bank, clues ClueRenderer, sessions SessionStore, state GameStateStore, opts ...ControllerOption) *Controller {
	c := &Controller{
		bank:      bank,
		clues:     clues,
		sessions:  sessions,
		state:     state,
		publisher: nopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Bank returns the catalog the controller checks answers against.
func (c *Controller) Bank() *quiz.Bank { return c.bank }

// Start opens a new session at the first question. It fails with
// ErrGameNotStarted while the admin has not started the game.
func (c *Controller) Start(ctx context.Context, playerName string) (Session, []quiz.PublicQuestion, error) {
	started, err := c.state.Started(ctx)
	if err != nil {
		return Session{}, nil, fmt.Errorf("reading game state: %w", err)
	}
	if !started {
		return Session{}, nil, ErrGameNotStarted
	}

	name := strings.TrimSpace(playerName)
	if name == "" {
		return Session{}, nil, fmt.Errorf("name is required: %w", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return Session{}, nil, fmt.Errorf("name must be at most %d characters: %w", maxNameLength, ErrInvalidInput)
	}

	sess, err := c.sessions.CreateSession(ctx, name, c.now().UTC())
	if err != nil {
		return Session{}, nil, fmt.Errorf("creating session: %w", err)
	}

	c.logger.Info("session started", "session_id", sess.ID, "name", sess.Name)
	c.publisher.Publish(events.SessionStarted(sess.Name))
	return sess, c.bank.PublicList(), nil
}

// Session returns the current state of a session.
func (c *Controller) Session(ctx context.Context, id string) (Session, error) {
	return c.sessions.GetSession(ctx, id)
}

// AnswerResult is the outcome of one submission. Incorrect answers are a
// normal result, not an error.
type AnswerResult struct {
	Correct   bool
	Completed bool
	Index     int
	TotalTime int64
	// Clue reveals the digit for the question just solved. Nil unless a
	// non-final answer was correct.
	Clue *clue.Clue
}

// SubmitAnswer checks an answer for the session's current question.
// questionID must be that question's id; anything else, including a
// replay of an already-solved question, fails with ErrQuestionMismatch.
func (c *Controller) SubmitAnswer(ctx context.Context, sessionID string, questionID int, answer string) (AnswerResult, error) {
	sess, err := c.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	if sess.Completed {
		return AnswerResult{}, ErrSessionAlreadyCompleted
	}

	q, ok := c.bank.At(sess.Index)
	if !ok || q.ID != questionID {
		return AnswerResult{}, ErrQuestionMismatch
	}

	correct, err := c.bank.CheckAnswer(q.ID, answer)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("checking answer: %w", err)
	}
	if !correct {
		return AnswerResult{Index: sess.Index}, nil
	}

	next := sess.Index + 1
	if next == c.bank.Len() {
		return c.finish(ctx, sess, next)
	}

	// Render before advancing so a rendering failure leaves the session
	// untouched.
	cl, err := c.clues.Render(sess.Index)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("rendering clue: %w", err)
	}

	won, err := c.sessions.AdvanceSession(ctx, sess.ID, sess.Index, next)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("advancing session: %w", err)
	}
	if !won {
		return AnswerResult{}, c.lostRace(ctx, sess.ID)
	}

	c.logger.Debug("question solved", "session_id", sess.ID, "question_id", q.ID, "index", next)
	return AnswerResult{Correct: true, Index: next, Clue: cl}, nil
}

func (c *Controller) finish(ctx context.Context, sess Session, next int) (AnswerResult, error) {
	end := c.now().UTC()
	total := TotalSeconds(sess.StartTime, end)

	won, err := c.sessions.FinishSession(ctx, sess.ID, sess.Index, next, end, total)
	if err != nil {
		return AnswerResult{}, fmt.Errorf("finishing session: %w", err)
	}
	if !won {
		return AnswerResult{}, c.lostRace(ctx, sess.ID)
	}

	c.completed(sess, total)
	return AnswerResult{Correct: true, Completed: true, Index: next, TotalTime: total}, nil
}

// lostRace re-reads a session after a conditional write lost to a
// concurrent request and reports why.
func (c *Controller) lostRace(ctx context.Context, id string) error {
	sess, err := c.sessions.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if sess.Completed {
		return ErrSessionAlreadyCompleted
	}
	return ErrQuestionMismatch
}

// Complete finalizes a session without checking its position. It backs
// the stateless client flow, where answers are validated one by one and
// the session is closed at the end. The first call wins; later calls fail
// with ErrSessionAlreadyCompleted and leave the recorded time unchanged.
func (c *Controller) Complete(ctx context.Context, sessionID string) (Session, error) {
	sess, err := c.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if sess.Completed {
		return Session{}, ErrSessionAlreadyCompleted
	}

	end := c.now().UTC()
	total := TotalSeconds(sess.StartTime, end)
	won, err := c.sessions.CompleteSession(ctx, sess.ID, end, total)
	if err != nil {
		return Session{}, fmt.Errorf("completing session: %w", err)
	}
	if !won {
		return Session{}, ErrSessionAlreadyCompleted
	}

	c.completed(sess, total)
	sess.Completed = true
	sess.EndTime = &end
	sess.TotalTime = &total
	return sess, nil
}

func (c *Controller) completed(sess Session, total int64) {
	c.logger.Info("session completed", "session_id", sess.ID, "name", sess.Name, "total_seconds", total)
	c.publisher.Publish(events.SessionCompleted(sess.Name, total))
}

// ClueFor renders the clue of a question by id without touching any
// session. Unknown ids fall back to id-1 so the digit table clamps them.
func (c *Controller) ClueFor(questionID int) (*clue.Clue, error) {
	index, ok := c.bank.IndexOf(questionID)
	if !ok {
		index = max(questionID-1, 0)
	}
	cl, err := c.clues.Render(index)
	if err != nil {
		return nil, fmt.Errorf("rendering clue: %w", err)
	}
	return cl, nil
}

// Validate checks an answer without any session state.
func (c *Controller) Validate(questionID int, answer string) (bool, error) {
	ok, err := c.bank.CheckAnswer(questionID, answer)
	if errors.Is(err, quiz.ErrQuestionNotFound) {
		return false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return ok, err
}
