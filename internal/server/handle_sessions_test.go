package server

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"

	"github.com/playperu/cluehunt/internal/events"
)

func answer(app *testApp, t *testing.T, sessionID string, questionID int, ans string) *SubmitAnswerResponse {
	t.Helper()
	w := app.do(t, http.MethodPost, "/api/sessions/"+sessionID+"/answers",
		map[string]any{"questionId": questionID, "answer": ans})
	expectStatus(t, w, http.StatusOK)
	resp := decode[SubmitAnswerResponse](t, w)
	return &resp
}

func TestSessionEndToEnd(t *testing.T) {
	app := newTestApp(t, nil)
	feed := app.broker.Subscribe()
	defer app.broker.Unsubscribe(feed)

	expectError(t, app.do(t, http.MethodPost, "/api/sessions", StartRequest{Name: "Alice"}), http.StatusConflict)

	expectStatus(t, app.do(t, http.MethodPost, "/api/game-state/toggle", map[string]bool{"started": true}), http.StatusOK)

	w := app.do(t, http.MethodPost, "/api/sessions", StartRequest{Name: "Alice"})
	expectStatus(t, w, http.StatusCreated)
	created := decode[CreateSessionResponse](t, w)
	if created.Session.CurrentIndex != 0 || created.Session.Completed {
		t.Fatalf("new session = %+v", created.Session)
	}
	if len(created.Questions) != len(catalogAnswers) {
		t.Fatalf("got %d questions, want %d", len(created.Questions), len(catalogAnswers))
	}
	id := created.Session.ID

	res := answer(app, t, id, 1, "7")
	if res.Correct || res.Index != 0 || res.Clue != "" {
		t.Errorf("wrong answer = %+v", res)
	}

	res = answer(app, t, id, 1, "8")
	if !res.Correct || res.Index != 1 {
		t.Errorf("correct answer = %+v", res)
	}
	png, ok := strings.CutPrefix(res.Clue, "data:image/png;base64,")
	if !ok {
		t.Fatalf("clue = %.40q, want a PNG data URL", res.Clue)
	}
	raw, err := base64.StdEncoding.DecodeString(png)
	if err != nil {
		t.Fatalf("decoding clue: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("\x89PNG")) {
		t.Error("clue is not a PNG")
	}

	for i := 1; i < len(catalogAnswers)-1; i++ {
		res = answer(app, t, id, i+1, catalogAnswers[i])
		if !res.Correct || res.Index != i+1 || res.Completed {
			t.Fatalf("question %d = %+v", i+1, res)
		}
	}

	last := len(catalogAnswers)
	res = answer(app, t, id, last, catalogAnswers[last-1])
	if !res.Correct || !res.Completed || res.TotalTime == nil || *res.TotalTime < 0 {
		t.Fatalf("final answer = %+v", res)
	}
	if res.Clue != "" {
		t.Error("final answer returned a clue")
	}

	w = app.do(t, http.MethodPost, "/api/sessions/"+id+"/answers",
		map[string]any{"questionId": last, "answer": catalogAnswers[last-1]})
	expectError(t, w, http.StatusConflict)

	w = app.do(t, http.MethodGet, "/api/leaderboard", nil)
	board := decode[[]LeaderboardEntry](t, w)
	if len(board) != 1 || board[0].Name != "Alice" || board[0].TotalTime != *res.TotalTime {
		t.Errorf("leaderboard = %+v", board)
	}

	var types []string
	for len(feed) > 0 {
		var ev events.Event
		decodeEvent(t, <-feed, &ev)
		types = append(types, ev.Type)
	}
	want := []string{events.TypeGameState, events.TypeSessionStarted, events.TypeSessionCompleted}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", types, want)
	}
}

func TestSessionRejectsOutOfOrderAnswers(t *testing.T) {
	app := newTestApp(t, nil)
	app.startGame(t)

	w := app.do(t, http.MethodPost, "/api/sessions", StartRequest{Name: "Bob"})
	id := decode[CreateSessionResponse](t, w).Session.ID

	// The right answer to a future question.
	w = app.do(t, http.MethodPost, "/api/sessions/"+id+"/answers", map[string]any{"questionId": 2, "answer": "3"})
	expectError(t, w, http.StatusConflict)

	answer(app, t, id, 1, "8")

	// A replay of the question just solved.
	w = app.do(t, http.MethodPost, "/api/sessions/"+id+"/answers", map[string]any{"questionId": 1, "answer": "8"})
	expectError(t, w, http.StatusConflict)

	w = app.do(t, http.MethodGet, "/api/sessions/"+id, nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[SessionResponse](t, w).Session.CurrentIndex; got != 1 {
		t.Errorf("index = %d, want 1", got)
	}
}

func TestSessionBadRequests(t *testing.T) {
	app := newTestApp(t, nil)
	app.startGame(t)

	expectError(t, app.do(t, http.MethodGet, "/api/sessions/ghost", nil), http.StatusNotFound)
	expectError(t, app.do(t, http.MethodPost, "/api/sessions/ghost/answers",
		map[string]any{"questionId": 1, "answer": "8"}), http.StatusNotFound)

	w := app.do(t, http.MethodPost, "/api/sessions", StartRequest{Name: "Carol"})
	id := decode[CreateSessionResponse](t, w).Session.ID
	expectError(t, app.do(t, http.MethodPost, "/api/sessions/"+id+"/answers",
		map[string]any{"answer": "8"}), http.StatusBadRequest)
	expectError(t, app.do(t, http.MethodPost, "/api/sessions/"+id+"/answers",
		map[string]any{"questionId": "1", "answer": "8"}), http.StatusBadRequest)
}
