package sim

import (
	"time"

	"github.com/google/uuid"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
)

// PendingDecision is a decision awaiting a player response. Decisions
// issued by a crisis carry its id; Stale marks sub-decisions whose
// crisis expired before they were answered. Stale decisions remain
// answerable, the flag only lets a client surface them differently.
type PendingDecision struct {
	catalog.Decision

	IssuedYear  int    `json:"issued_year"`
	IssuedMonth int    `json:"issued_month"`
	CrisisID    string `json:"crisis_id,omitempty"`
	Stale       bool   `json:"stale,omitempty"`
}

// ResolvedDecision is a history entry: the decision as offered,
// annotated with the option taken and the consequences actually applied.
type ResolvedDecision struct {
	catalog.Decision

	ChosenOptionID string                `json:"chosen_option_id"`
	Applied        []catalog.Consequence `json:"applied_consequences,omitempty"`
	ResolvedYear   int                   `json:"resolved_year"`
	ResolvedMonth  int                   `json:"resolved_month"`
}

// ActiveCrisis tracks the single crisis in progress. DaysRemaining is
// nil for crises without a time limit.
type ActiveCrisis struct {
	CrisisID      string `json:"crisis_id"`
	DaysRemaining *int   `json:"days_remaining,omitempty"`
}

// UnresolvedCrisis records a crisis whose timer expired unanswered.
// ErasUnresolved increments at every era transition and scales the
// crisis's penalty, so ignoring a crisis gets worse over time.
type UnresolvedCrisis struct {
	CrisisID       string `json:"crisis_id"`
	ErasUnresolved int    `json:"eras_unresolved"`
}

// GameState is the aggregate state of one Protocol Guardian session.
type GameState struct {
	ID      uuid.UUID `json:"id"`
	Catalog string    `json:"catalog"` // catalog file name the session was created from

	CurrentYear  int     `json:"current_year"`
	CurrentMonth int     `json:"current_month"`
	TermProgress float64 `json:"term_progress"`

	Indicators Indicators `json:"indicators"`

	PendingDecisions []PendingDecision  `json:"pending_decisions"`
	History          []ResolvedDecision `json:"decision_history,omitempty"`

	CurrentCrisis    *ActiveCrisis      `json:"current_crisis,omitempty"`
	UnresolvedCrises []UnresolvedCrisis `json:"unresolved_crises,omitempty"`

	// TriggeredCrises lists every crisis that has fired this session,
	// active or not. A crisis triggers at most once per session.
	TriggeredCrises []string `json:"triggered_crises,omitempty"`

	CompletedLessons []string `json:"completed_lessons,omitempty"`

	Phase  Phase      `json:"phase"`
	Ending EndingType `json:"ending,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewGameState builds the initial state for a catalog: calendar at the
// term start, default indicator seeds overridden by the catalog's
// initial values, intro phase, nothing pending.
func NewGameState(cat *catalog.Catalog) *GameState {
	gs := &GameState{
		ID:           uuid.New(),
		Catalog:      cat.FileName,
		CurrentYear:  StartYear,
		CurrentMonth: StartMonth,
		Indicators: Indicators{
			NetworkHealth:    DefaultNetworkHealth,
			PublicConfidence: DefaultPublicConfidence,
			TechAdvancement:  DefaultTechAdvancement,
		},
		PendingDecisions: make([]PendingDecision, 0),
		Phase:            PhaseIntro,
		CreatedAt:        time.Now(),
	}

	for name, value := range cat.InitialIndicators {
		switch name {
		case catalog.IndicatorNetworkHealth:
			gs.Indicators.NetworkHealth = clampScore(value)
		case catalog.IndicatorPublicConfidence:
			gs.Indicators.PublicConfidence = clampScore(value)
		case catalog.IndicatorTechAdvancement:
			gs.Indicators.TechAdvancement = clampScore(value)
		}
	}

	return gs
}

// ElapsedMonths is the number of whole months since the term start.
func (gs *GameState) ElapsedMonths() int {
	return (gs.CurrentYear-StartYear)*12 + (gs.CurrentMonth - StartMonth)
}

// HasCompletedLesson reports whether the lesson id is already recorded.
func (gs *GameState) HasCompletedLesson(lessonID string) bool {
	for _, id := range gs.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// hasTriggeredCrisis reports whether the crisis has fired this session.
func (gs *GameState) hasTriggeredCrisis(crisisID string) bool {
	for _, id := range gs.TriggeredCrises {
		if id == crisisID {
			return true
		}
	}
	return false
}
