package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/cluehunt/internal/quiz"
)

// HealthResponse documents /healthz: one status per backend.
type HealthResponse map[string]struct {
	Status string `json:"status" enum:"ok,error"`
}

type clueQuery struct {
	QuestionID int `query:"questionId" description:"Question id; missing or invalid means 1."`
}

type leaderboardQuery struct {
	Limit int `query:"limit" minimum:"1" description:"Number of entries; capped at 100."`
}

type userPath struct {
	UserID string `path:"userID"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type submitAnswerInput struct {
	SessionID string `path:"sessionID"`
	SubmitAnswerRequest
}

type toggleInput struct {
	Authorization string `header:"Authorization" description:"Bearer admin token, required when the server has one configured."`
	ToggleRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Clue Hunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the clue hunt trivia game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/live
	getLive, _ := r.NewOperationContext(http.MethodGet, "/ws/live")
	getLive.SetSummary("Live feed")
	getLive.SetDescription("Upgrades to a WebSocket that pushes game_state, session_started and session_completed events.")
	getLive.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getLive)

	// GET /api/game-state
	getState, _ := r.NewOperationContext(http.MethodGet, "/api/game-state")
	getState.SetSummary("Get game state")
	getState.SetDescription("Returns whether new sessions may start. Created as stopped on first read.")
	getState.AddRespStructure(GameStateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getState)

	// POST /api/game-state/toggle
	toggle, _ := r.NewOperationContext(http.MethodPost, "/api/game-state/toggle")
	toggle.SetSummary("Start or stop the game")
	toggle.SetDescription("Sets the started flag. Running sessions are not affected.")
	toggle.AddReqStructure(toggleInput{})
	toggle.AddRespStructure(ToggleResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	toggle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	toggle.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(toggle)

	// GET /api/questions
	getQuestions, _ := r.NewOperationContext(http.MethodGet, "/api/questions")
	getQuestions.SetSummary("List questions")
	getQuestions.SetDescription("Returns the catalog in answering order. Answers are never included.")
	getQuestions.AddRespStructure([]quiz.PublicQuestion{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getQuestions)

	// POST /api/validate
	validate, _ := r.NewOperationContext(http.MethodPost, "/api/validate")
	validate.SetSummary("Check an answer")
	validate.SetDescription("Checks one answer without touching any session.")
	validate.AddReqStructure(ValidateRequest{})
	validate.AddRespStructure(ValidateResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	validate.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(validate)

	// GET /api/generate-clue
	getClue, _ := r.NewOperationContext(http.MethodGet, "/api/generate-clue")
	getClue.SetSummary("Render a clue")
	getClue.SetDescription("Renders the digit of a question onto its map at a random position and rotation.")
	getClue.AddReqStructure(clueQuery{})
	getClue.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType("image/png"))
	_ = r.AddOperation(getClue)

	// POST /api/users/start
	userStart, _ := r.NewOperationContext(http.MethodPost, "/api/users/start")
	userStart.SetSummary("Start a user")
	userStart.SetDescription("Starts a session for the stateless client.")
	userStart.AddReqStructure(StartRequest{})
	userStart.AddRespStructure(UserResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	userStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	userStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(userStart)

	// POST /api/users/complete/{userID}
	userComplete, _ := r.NewOperationContext(http.MethodPost, "/api/users/complete/{userID}")
	userComplete.SetSummary("Complete a user")
	userComplete.SetDescription("Records the finishing time. Only the first call succeeds.")
	userComplete.AddReqStructure(userPath{})
	userComplete.AddRespStructure(UserResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	userComplete.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	userComplete.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(userComplete)

	// GET /api/users/leaderboard
	userBoard, _ := r.NewOperationContext(http.MethodGet, "/api/users/leaderboard")
	userBoard.SetSummary("Completed users")
	userBoard.SetDescription("Returns the 50 fastest completed users.")
	userBoard.AddRespStructure(UserLeaderboardResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(userBoard)

	// GET /api/users/{userID}
	getUser, _ := r.NewOperationContext(http.MethodGet, "/api/users/{userID}")
	getUser.SetSummary("Get user")
	getUser.AddReqStructure(userPath{})
	getUser.AddRespStructure(UserResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getUser.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getUser)

	// GET /api/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Returns completed sessions, fastest first.")
	getBoard.AddReqStructure(leaderboardQuery{})
	getBoard.AddRespStructure([]LeaderboardEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getBoard)

	// POST /api/sessions
	createSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	createSession.SetSummary("Start a session")
	createSession.SetDescription("Starts a session at the first question. Fails while the game is stopped.")
	createSession.AddReqStructure(StartRequest{})
	createSession.AddRespStructure(CreateSessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(createSession)

	// GET /api/sessions/{sessionID}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}")
	getSession.SetSummary("Get session")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(SessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// POST /api/sessions/{sessionID}/answers
	submit, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/answers")
	submit.SetSummary("Submit answer")
	submit.SetDescription("Answers the session's current question. Other question ids are rejected with 409.")
	submit.AddReqStructure(submitAnswerInput{})
	submit.AddRespStructure(SubmitAnswerResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	submit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	submit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	submit.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(submit)

	// GET /api/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of game updates, starting with the current game state.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/join-qr
	getQR, _ := r.NewOperationContext(http.MethodGet, "/api/join-qr")
	getQR.SetSummary("Join QR code")
	getQR.SetDescription("PNG QR code of the player URL.")
	getQR.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK), openapi.WithContentType("image/png"))
	_ = r.AddOperation(getQR)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.HandlerFunc {
	return v5emb.New("Clue Hunt API", "/openapi.json", "/docs").ServeHTTP
}
