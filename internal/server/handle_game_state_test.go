package server

import (
	"net/http"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestGameStateDefaultsToStopped(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodGet, "/api/game-state", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[GameStateResponse](t, w); got.Started {
		t.Error("started = true, want false")
	}
}

func TestToggleGameState(t *testing.T) {
	app := newTestApp(t, nil)

	for _, want := range []bool{true, false, true} {
		w := app.do(t, http.MethodPost, "/api/game-state/toggle", map[string]bool{"started": want})
		expectStatus(t, w, http.StatusOK)
		resp := decode[ToggleResponse](t, w)
		if !resp.OK || resp.Started != want {
			t.Errorf("toggle(%v) = %+v", want, resp)
		}

		w = app.do(t, http.MethodGet, "/api/game-state", nil)
		if got := decode[GameStateResponse](t, w); got.Started != want {
			t.Errorf("game state = %v, want %v", got.Started, want)
		}
	}
}

func TestToggleRejectsNonBoolean(t *testing.T) {
	app := newTestApp(t, nil)

	bodies := []any{
		map[string]string{"started": "true"},
		map[string]int{"started": 1},
		map[string]any{"started": nil},
		map[string]any{},
	}
	for _, body := range bodies {
		resp := expectError(t, app.do(t, http.MethodPost, "/api/game-state/toggle", body), http.StatusBadRequest)
		if !strings.Contains(resp.Error, "boolean") {
			t.Errorf("error = %q, want mention of boolean", resp.Error)
		}
	}
}

func TestToggleRequiresAdminToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing token: %v", err)
	}
	app := newTestApp(t, func(d *Deps) { d.AdminTokenHash = string(hash) })
	body := map[string]bool{"started": true}

	tests := []struct {
		name       string
		header     []string
		wantStatus int
	}{
		{"missing", nil, http.StatusUnauthorized},
		{"wrong scheme", []string{"Authorization", "Basic s3cret"}, http.StatusUnauthorized},
		{"wrong token", []string{"Authorization", "Bearer nope"}, http.StatusUnauthorized},
		{"valid", []string{"Authorization", "Bearer s3cret"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, http.MethodPost, "/api/game-state/toggle", body, tt.header...)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}

	// Reading the state stays public.
	expectStatus(t, app.do(t, http.MethodGet, "/api/game-state", nil), http.StatusOK)
}
