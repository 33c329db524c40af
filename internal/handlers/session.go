package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/elitelephant/protocol-guardian/internal/services"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// CreateSessionRequest defines the request body for starting a session
type CreateSessionRequest struct {
	Catalog string `json:"catalog"` // Required: catalog file name
}

// DecisionRequest resolves one pending decision with one of its options
type DecisionRequest struct {
	DecisionID string `json:"decision_id"`
	OptionID   string `json:"option_id"`
}

// AdvanceRequest moves the simulated calendar forward. A missing body
// or months field advances one month; zero recomputes the phase only.
type AdvanceRequest struct {
	Months *int `json:"months"`
}

// LessonRequest records an educational lesson as completed
type LessonRequest struct {
	LessonID string `json:"lesson_id"`
}

// SampleResponse reports whether a fresh decision could be offered.
// An exhausted catalog is a benign outcome, not an error.
type SampleResponse struct {
	Sampled   bool           `json:"sampled"`
	GameState *sim.GameState `json:"game_state"`
}

// CrisisResponse reports whether a crisis fired.
type CrisisResponse struct {
	Triggered bool           `json:"triggered"`
	GameState *sim.GameState `json:"game_state"`
}

// SessionHandler drives game sessions over HTTP.
//
// Routes:
// POST /v1/sessions                            - Create a session from a catalog
// GET /v1/sessions/{id}                        - Read session state
// DELETE /v1/sessions/{id}                     - Delete a session
// POST /v1/sessions/{id}/decision              - Resolve a pending decision
// POST /v1/sessions/{id}/advance               - Advance simulated time
// POST /v1/sessions/{id}/reset                 - Reset to the initial template
// POST /v1/sessions/{id}/sample-decision       - Force-offer a catalog decision
// POST /v1/sessions/{id}/trigger-crisis        - Force-trigger an eligible crisis
// POST /v1/sessions/{id}/lessons               - Record a completed lesson
type SessionHandler struct {
	storage services.Storage
	rng     sim.Rand
	logger  *slog.Logger
}

func NewSessionHandler(storage services.Storage, rng sim.Rand, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		rng:     rng,
		logger:  logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. POST /v1/sessions creates a session.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, sessionID)
		case http.MethodDelete:
			h.handleDelete(w, r, sessionID)
		default:
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Session actions are POST only.")
		return
	}

	switch parts[1] {
	case "decision":
		h.handleDecision(w, r, sessionID)
	case "advance":
		h.handleAdvance(w, r, sessionID)
	case "reset":
		h.handleReset(w, r, sessionID)
	case "sample-decision":
		h.handleSampleDecision(w, r, sessionID)
	case "trigger-crisis":
		h.handleTriggerCrisis(w, r, sessionID)
	case "lessons":
		h.handleLesson(w, r, sessionID)
	default:
		h.writeError(w, http.StatusNotFound, "Unknown session action: "+parts[1])
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'catalog' field.")
		return
	}
	if req.Catalog == "" {
		h.writeError(w, http.StatusBadRequest, "Catalog file name is required")
		return
	}

	cat, err := h.storage.GetCatalog(r.Context(), req.Catalog)
	if err != nil {
		h.logger.Warn("Catalog not found for new session", "catalog", req.Catalog, "error", err)
		h.writeError(w, http.StatusNotFound, "Catalog not found: "+req.Catalog)
		return
	}

	session := sim.NewSession(cat, h.rng, h.logger)
	gs := session.State()

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save new session", "session_id", gs.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.logger.Info("Session created", "session_id", gs.ID, "catalog", req.Catalog)
	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, gs)
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.writeJSON(w, gs)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleDecision(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'decision_id' and 'option_id'.")
		return
	}
	if req.DecisionID == "" || req.OptionID == "" {
		h.writeError(w, http.StatusBadRequest, "Both decision_id and option_id are required")
		return
	}

	h.withSession(w, r, id, func(s *sim.Session) (any, error) {
		return s.MakeDecision(req.DecisionID, req.OptionID)
	})
}

func (h *SessionHandler) handleAdvance(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	months := 1
	var req AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.Months != nil {
		months = *req.Months
	}

	h.withSession(w, r, id, func(s *sim.Session) (any, error) {
		return s.AdvanceTime(months)
	})
}

func (h *SessionHandler) handleReset(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.withSession(w, r, id, func(s *sim.Session) (any, error) {
		return s.ResetGame(), nil
	})
}

func (h *SessionHandler) handleSampleDecision(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.withSession(w, r, id, func(s *sim.Session) (any, error) {
		sampled := s.TriggerSampleDecision()
		return &SampleResponse{Sampled: sampled, GameState: s.State()}, nil
	})
}

func (h *SessionHandler) handleTriggerCrisis(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.withSession(w, r, id, func(s *sim.Session) (any, error) {
		triggered := s.TriggerRandomCrisis()
		return &CrisisResponse{Triggered: triggered, GameState: s.State()}, nil
	})
}

func (h *SessionHandler) handleLesson(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req LessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'lesson_id'.")
		return
	}
	if req.LessonID == "" {
		h.writeError(w, http.StatusBadRequest, "lesson_id is required")
		return
	}

	h.withSession(w, r, id, func(s *sim.Session) (any, error) {
		return s.CompleteLesson(req.LessonID), nil
	})
}

// withSession runs one load-mutate-save cycle. All mutation for a
// session happens inside a single request, which is what keeps the
// engine's single-writer assumption intact behind HTTP.
func (h *SessionHandler) withSession(w http.ResponseWriter, r *http.Request, id uuid.UUID, fn func(*sim.Session) (any, error)) {
	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	cat, err := h.storage.GetCatalog(r.Context(), gs.Catalog)
	if err != nil {
		h.logger.Error("Catalog missing for existing session",
			"session_id", id, "catalog", gs.Catalog, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Session catalog is no longer available")
		return
	}

	session := sim.ResumeSession(cat, gs, h.rng, h.logger)
	result, err := fn(session)
	if err != nil {
		h.writeEngineError(w, id, err)
		return
	}

	if err := h.storage.SaveGameState(r.Context(), session.State().ID, session.State()); err != nil {
		h.logger.Error("Failed to save session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.writeJSON(w, result)
}

// writeEngineError maps the engine's expected invalid-operation errors
// to client statuses; anything else is a server fault.
func (h *SessionHandler) writeEngineError(w http.ResponseWriter, id uuid.UUID, err error) {
	switch {
	case errors.Is(err, sim.ErrDecisionNotPending):
		h.writeError(w, http.StatusConflict, "Decision is not pending in this session")
	case errors.Is(err, sim.ErrOptionNotFound):
		h.writeError(w, http.StatusBadRequest, "Option does not belong to the decision")
	case errors.Is(err, sim.ErrInvalidMonths):
		h.writeError(w, http.StatusBadRequest, "Months must not be negative")
	default:
		h.logger.Error("Unexpected engine error", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *SessionHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}

func (h *SessionHandler) writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
