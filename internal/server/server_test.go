package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/cluehunt/internal/clue"
	"github.com/playperu/cluehunt/internal/database"
	"github.com/playperu/cluehunt/internal/events"
	"github.com/playperu/cluehunt/internal/hunt"
	"github.com/playperu/cluehunt/internal/migrations"
	"github.com/playperu/cluehunt/internal/quiz"
	"github.com/playperu/cluehunt/internal/store"
)

var catalogAnswers = []string{"8", "3", "odd", "23", "042", "25", "111025"}

type testApp struct {
	router chi.Router
	store  *store.SQLiteStore
	broker *events.Broker
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, tweak func(*Deps)) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, database.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	bank, err := quiz.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	comp, err := clue.New(clue.Options{
		Digits:      []string{"1", "1", "1", "0", "2", "5"},
		Backgrounds: clue.NewDirBackgrounds(t.TempDir()),
		Logger:      quietLogger(),
		Rand:        rand.New(rand.NewPCG(7, 7)),
	})
	if err != nil {
		t.Fatalf("compositor: %v", err)
	}

	logger := quietLogger()
	st := store.NewSQLiteStore(db)
	broker := events.NewBroker()
	deps := Deps{
		Controller:  hunt.NewController(bank, comp, st, st, hunt.WithPublisher(broker), hunt.WithLogger(logger)),
		Leaderboard: hunt.NewLeaderboard(st, hunt.DefaultLeaderboardLimit),
		Admin:       hunt.NewAdmin(st, broker, logger),
		Broker:      broker,
		CORSOrigins: []string{"*"},
	}
	if tweak != nil {
		tweak(&deps)
	}

	return &testApp{router: newRouter(logger, deps), store: st, broker: broker}
}

func (a *testApp) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) startGame(t *testing.T) {
	t.Helper()
	if _, err := a.store.SetStarted(context.Background(), true); err != nil {
		t.Fatalf("starting game: %v", err)
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d: %s", w.Code, want, w.Body.String())
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int) ErrorResponse {
	t.Helper()
	expectStatus(t, w, status)
	resp := decode[ErrorResponse](t, w)
	if resp.OK {
		t.Error("ok = true, want false")
	}
	if resp.Error == "" {
		t.Error("error message is empty")
	}
	return resp
}

func TestRecovererKeepsServing(t *testing.T) {
	r := chi.NewRouter()
	r.Use(newStructuredLogger(quietLogger()))
	r.Use(middleware.Recoverer)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodOptions, "/api/game-state/toggle", nil,
		"Origin", "http://localhost:5173",
		"Access-Control-Request-Method", http.MethodPost,
		"Access-Control-Request-Headers", "Authorization",
	)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	app := newTestApp(t, nil)
	expectError(t, app.do(t, http.MethodGet, "/api/nope", nil), http.StatusNotFound)
}
