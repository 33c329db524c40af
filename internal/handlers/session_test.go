package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elitelephant/protocol-guardian/internal/services"
	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

// fixedRand keeps handler tests deterministic: never triggers the
// random crisis roll, never offers a sampled decision.
type fixedRand struct{}

func (fixedRand) Float64() float64 { return 1.0 }
func (fixedRand) Intn(n int) int   { return 0 }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Name:        "Test Catalog",
		FileName:    "test_catalog.json",
		Description: "Fixture content for handler tests",
		InitialIndicators: map[catalog.Indicator]int{
			catalog.IndicatorNetworkHealth:    70,
			catalog.IndicatorPublicConfidence: 65,
			catalog.IndicatorTechAdvancement:  40,
		},
		Decisions: []catalog.Decision{
			{
				ID:          "firewall_upgrade",
				Title:       "Firewall Upgrade",
				Description: "Fund the perimeter overhaul?",
				Options: []catalog.DecisionOption{
					{
						ID:   "fund",
						Text: "Fund it",
						Consequences: []catalog.Consequence{
							{Type: catalog.IndicatorNetworkHealth, Change: 10},
							{Type: catalog.IndicatorPublicConfidence, Change: -5},
						},
					},
					{
						ID:   "defer",
						Text: "Defer a quarter",
						Consequences: []catalog.Consequence{
							{Type: catalog.IndicatorNetworkHealth, Change: -5},
						},
					},
				},
			},
		},
		Crises: []catalog.Crisis{
			{
				ID:      "botnet_surge",
				Title:   "Botnet Surge",
				Era:     1,
				Urgency: catalog.UrgencyHigh,
				Decisions: []catalog.Decision{
					{
						ID:          "isolate_nodes",
						Title:       "Isolate Nodes",
						Description: "Quarantine the infected segment?",
						Options: []catalog.DecisionOption{
							{
								ID:   "contain",
								Text: "Contain",
								Consequences: []catalog.Consequence{
									{Type: catalog.IndicatorNetworkHealth, Change: 5},
								},
							},
						},
					},
				},
			},
		},
		Lessons: []catalog.Lesson{
			{ID: "lesson_zero_trust", Title: "Zero Trust Basics"},
		},
	}
}

// newTestSession stores a fresh session in the mock and returns its state.
func newTestSession(t *testing.T, storage *services.MockStorage, cat *catalog.Catalog) *sim.GameState {
	t.Helper()
	session := sim.NewSession(cat, fixedRand{}, testLogger())
	gs := session.State()
	require.NoError(t, storage.SaveGameState(t.Context(), gs.ID, gs))
	return gs
}

func setupSessionHandler() (*SessionHandler, *services.MockStorage) {
	storage := services.NewMockStorage()
	storage.AddCatalog(testCatalog())
	return NewSessionHandler(storage, fixedRand{}, testLogger()), storage
}

func decodeGameState(t *testing.T, body *bytes.Buffer) *sim.GameState {
	t.Helper()
	var gs sim.GameState
	require.NoError(t, json.Unmarshal(body.Bytes(), &gs))
	return &gs
}

func TestSessionHandler_Create(t *testing.T) {
	handler, storage := setupSessionHandler()

	body, _ := json.Marshal(CreateSessionRequest{Catalog: "test_catalog.json"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	gs := decodeGameState(t, w.Body)
	assert.NotEqual(t, uuid.Nil, gs.ID)
	assert.Equal(t, "test_catalog.json", gs.Catalog)
	assert.Equal(t, 70, gs.Indicators.NetworkHealth)
	assert.Equal(t, sim.PhaseIntro, gs.Phase)

	stored, err := storage.LoadGameState(t.Context(), gs.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestSessionHandler_Create_UnknownCatalog(t *testing.T) {
	handler, _ := setupSessionHandler()

	body, _ := json.Marshal(CreateSessionRequest{Catalog: "missing.json"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Create_MissingCatalogField(t *testing.T) {
	handler, _ := setupSessionHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Read(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+gs.ID.String(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeGameState(t, w.Body)
	assert.Equal(t, gs.ID, got.ID)
}

func TestSessionHandler_Read_NotFound(t *testing.T) {
	handler, _ := setupSessionHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_Read_BadID(t *testing.T) {
	handler, _ := setupSessionHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/not-a-uuid", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Delete(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+gs.ID.String(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	stored, err := storage.LoadGameState(t.Context(), gs.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSessionHandler_Decision(t *testing.T) {
	handler, storage := setupSessionHandler()
	cat := testCatalog()

	session := sim.NewSession(cat, fixedRand{}, testLogger())
	require.True(t, session.TriggerSampleDecision())
	gs := session.State()
	require.NoError(t, storage.SaveGameState(t.Context(), gs.ID, gs))

	body, _ := json.Marshal(DecisionRequest{DecisionID: "firewall_upgrade", OptionID: "fund"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/decision", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeGameState(t, w.Body)
	assert.Equal(t, 80, got.Indicators.NetworkHealth)
	assert.Equal(t, 60, got.Indicators.PublicConfidence)
	assert.Empty(t, got.PendingDecisions)
	require.Len(t, got.History, 1)
	assert.Equal(t, "fund", got.History[0].ChosenOptionID)
}

func TestSessionHandler_Decision_NotPending(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	body, _ := json.Marshal(DecisionRequest{DecisionID: "firewall_upgrade", OptionID: "fund"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/decision", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandler_Decision_BadOption(t *testing.T) {
	handler, storage := setupSessionHandler()
	cat := testCatalog()

	session := sim.NewSession(cat, fixedRand{}, testLogger())
	require.True(t, session.TriggerSampleDecision())
	gs := session.State()
	require.NoError(t, storage.SaveGameState(t.Context(), gs.ID, gs))

	body, _ := json.Marshal(DecisionRequest{DecisionID: "firewall_upgrade", OptionID: "nope"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/decision", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Advance(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	months := 13
	body, _ := json.Marshal(AdvanceRequest{Months: &months})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/advance", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeGameState(t, w.Body)
	assert.Equal(t, 2036, got.CurrentYear)
	assert.Equal(t, 2, got.CurrentMonth)
	assert.Equal(t, sim.PhaseEra2, got.Phase)
}

func TestSessionHandler_Advance_DefaultsToOneMonth(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/advance", bytes.NewReader(nil))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeGameState(t, w.Body)
	assert.Equal(t, 2035, got.CurrentYear)
	assert.Equal(t, 2, got.CurrentMonth)
}

func TestSessionHandler_Advance_NegativeMonths(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	months := -1
	body, _ := json.Marshal(AdvanceRequest{Months: &months})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/advance", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandler_Reset(t *testing.T) {
	handler, storage := setupSessionHandler()
	cat := testCatalog()

	session := sim.NewSession(cat, fixedRand{}, testLogger())
	_, err := session.AdvanceTime(20)
	require.NoError(t, err)
	gs := session.State()
	require.NoError(t, storage.SaveGameState(t.Context(), gs.ID, gs))

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/reset", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeGameState(t, w.Body)
	assert.Equal(t, gs.ID, got.ID, "reset keeps the session ID")
	assert.Equal(t, 2035, got.CurrentYear)
	assert.Equal(t, 1, got.CurrentMonth)
	assert.Equal(t, sim.PhaseIntro, got.Phase)
}

func TestSessionHandler_SampleDecision(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/sample-decision", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SampleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Sampled)
	require.NotNil(t, resp.GameState)
	require.Len(t, resp.GameState.PendingDecisions, 1)
	assert.Equal(t, "firewall_upgrade", resp.GameState.PendingDecisions[0].ID)
}

func TestSessionHandler_TriggerCrisis(t *testing.T) {
	handler, storage := setupSessionHandler()
	cat := testCatalog()

	// Crises are era-gated; move the session into era 1 first.
	session := sim.NewSession(cat, fixedRand{}, testLogger())
	_, err := session.AdvanceTime(1)
	require.NoError(t, err)
	gs := session.State()
	require.NoError(t, storage.SaveGameState(t.Context(), gs.ID, gs))

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/trigger-crisis", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp CrisisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Triggered)
	require.NotNil(t, resp.GameState.CurrentCrisis)
	assert.Equal(t, "botnet_surge", resp.GameState.CurrentCrisis.CrisisID)
}

func TestSessionHandler_Lesson(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	body, _ := json.Marshal(LessonRequest{LessonID: "lesson_zero_trust"})
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/lessons", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeGameState(t, w.Body)
	assert.Equal(t, []string{"lesson_zero_trust"}, got.CompletedLessons)
}

func TestSessionHandler_UnknownAction(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+gs.ID.String()+"/explode", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionHandler_MethodNotAllowed(t *testing.T) {
	handler, storage := setupSessionHandler()
	gs := newTestSession(t, storage, testCatalog())

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+gs.ID.String()+"/advance", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
