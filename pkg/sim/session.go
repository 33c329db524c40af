package sim

import (
	"log/slog"
	"time"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
)

// Probabilities rolled on every time advance.
const (
	// crisisTriggerChance is the chance an eligible crisis fires while
	// no crisis is active.
	crisisTriggerChance = 0.30

	// decisionSampleChance is the independent chance a fresh catalog
	// decision is offered, pacing the narrative organically.
	decisionSampleChance = 0.40
)

// Early-termination floors: the simulation collapses to the ending
// phase as soon as an indicator falls to or below its floor.
const (
	NetworkHealthFloor    = 20
	PublicConfidenceFloor = 15
)

// Rand is the source of randomness for crisis triggers and decision
// sampling. *math/rand.Rand satisfies it; tests inject scripted values.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Session owns one game state and drives all mutations against it.
// It is not safe for concurrent use; callers expose it behind
// per-session serialization (the HTTP layer does one load-mutate-save
// per request).
type Session struct {
	catalog *catalog.Catalog
	state   *GameState
	rng     Rand
	logger  *slog.Logger
}

// NewSession starts a fresh session from a catalog's initial template.
func NewSession(cat *catalog.Catalog, rng Rand, logger *slog.Logger) *Session {
	return &Session{
		catalog: cat,
		state:   NewGameState(cat),
		rng:     rng,
		logger:  logger,
	}
}

// ResumeSession wraps a previously persisted game state.
func ResumeSession(cat *catalog.Catalog, gs *GameState, rng Rand, logger *slog.Logger) *Session {
	return &Session{
		catalog: cat,
		state:   gs,
		rng:     rng,
		logger:  logger,
	}
}

// State returns the current game state.
func (s *Session) State() *GameState {
	return s.state
}

// MakeDecision resolves a pending decision with one of its options,
// applying the option's consequences and recording the decision in
// history. Resolving a decision that is not pending, or choosing an
// option the decision does not offer, is rejected without touching
// state. Resolving the last pending sub-decision of the active crisis
// resolves the crisis.
func (s *Session) MakeDecision(decisionID, optionID string) (*GameState, error) {
	gs := s.state

	var pd *PendingDecision
	for i := range gs.PendingDecisions {
		if gs.PendingDecisions[i].ID == decisionID {
			pd = &gs.PendingDecisions[i]
			break
		}
	}
	if pd == nil {
		return nil, ErrDecisionNotPending
	}

	opt, ok := pd.Option(optionID)
	if !ok {
		return nil, ErrOptionNotFound
	}

	// Record only the consequences the engine actually applies;
	// forward-compatible unknown indicators are dropped here too.
	applied := make([]catalog.Consequence, 0, len(opt.Consequences))
	for _, c := range opt.Consequences {
		if c.Type.Valid() {
			applied = append(applied, c)
		}
	}

	resolved, _ := gs.dequeueDecision(decisionID)
	gs.Indicators = gs.Indicators.Apply(applied)
	gs.History = append(gs.History, ResolvedDecision{
		Decision:       resolved.Decision,
		ChosenOptionID: optionID,
		Applied:        applied,
		ResolvedYear:   gs.CurrentYear,
		ResolvedMonth:  gs.CurrentMonth,
	})

	if resolved.CrisisID != "" && gs.CurrentCrisis != nil &&
		gs.CurrentCrisis.CrisisID == resolved.CrisisID &&
		gs.pendingForCrisis(resolved.CrisisID) == 0 {
		gs.CurrentCrisis = nil
		if s.logger != nil {
			s.logger.Info("Crisis resolved",
				"session_id", gs.ID,
				"crisis_id", resolved.CrisisID)
		}
	}

	gs.UpdatedAt = time.Now()
	return gs, nil
}

// AdvanceTime moves the simulated calendar forward by the given number
// of months and runs everything the passage of time entails: phase
// recomputation, era-transition penalties, early-termination check,
// crisis countdown and expiry, and probabilistic content triggers.
// A zero-month advance recomputes the phase without elapsing time,
// which is how a session leaves the intro phase. Once the session is
// in the ending phase, advancing time is a benign no-op.
func (s *Session) AdvanceTime(months int) (*GameState, error) {
	if months < 0 {
		return nil, ErrInvalidMonths
	}

	gs := s.state
	if gs.Phase.Terminal() {
		return gs, nil
	}

	elapsed := gs.ElapsedMonths() + months
	gs.CurrentYear = StartYear + elapsed/12
	gs.CurrentMonth = StartMonth + elapsed%12
	gs.TermProgress = termProgress(elapsed)

	prevEra := gs.Phase.Era()
	next := PhaseForElapsed(elapsed)

	// Penalties land before the collapse check so a long-ignored
	// crisis can itself end the game.
	if era := next.Era(); era > prevEra && era <= catalog.MaxEra {
		s.applyUnresolvedPenalties()
	}

	if gs.Indicators.NetworkHealth <= NetworkHealthFloor ||
		gs.Indicators.PublicConfidence <= PublicConfidenceFloor {
		next = PhaseEnding
	}

	if gs.CurrentCrisis != nil && gs.CurrentCrisis.DaysRemaining != nil && months > 0 {
		*gs.CurrentCrisis.DaysRemaining -= months * DaysPerMonth
		if *gs.CurrentCrisis.DaysRemaining <= 0 {
			s.expireActiveCrisis()
		}
	}

	gs.Phase = next

	if !next.Terminal() {
		s.maybeTriggerCrisis()
		if s.rng.Float64() < decisionSampleChance {
			s.sampleDecision()
		}
	} else if gs.Ending == "" {
		gs.Ending = ResolveEnding(gs.Indicators)
		if s.logger != nil {
			s.logger.Info("Session ended",
				"session_id", gs.ID,
				"ending", gs.Ending,
				"indicators", gs.Indicators)
		}
	}

	gs.UpdatedAt = time.Now()
	return gs, nil
}

// ResetGame discards all progress and restores the catalog's initial
// template. The session keeps its identity so persisted references to
// it stay valid.
func (s *Session) ResetGame() *GameState {
	id := s.state.ID
	createdAt := s.state.CreatedAt

	gs := NewGameState(s.catalog)
	gs.ID = id
	gs.CreatedAt = createdAt
	gs.UpdatedAt = time.Now()
	s.state = gs

	if s.logger != nil {
		s.logger.Info("Session reset", "session_id", gs.ID)
	}
	return gs
}

// TriggerSampleDecision enqueues one uniformly sampled catalog decision
// that is neither pending nor already resolved. Returns false when the
// catalog is exhausted, which is a benign condition, not an error.
func (s *Session) TriggerSampleDecision() bool {
	sampled := s.sampleDecision()
	if sampled {
		s.state.UpdatedAt = time.Now()
	}
	return sampled
}

// TriggerRandomCrisis fires one uniformly sampled eligible crisis for
// the current era, skipping the usual probability roll. Returns false
// when a crisis is already active or no crisis is eligible.
func (s *Session) TriggerRandomCrisis() bool {
	if s.state.CurrentCrisis != nil {
		return false
	}
	eligible := s.eligibleCrises()
	if len(eligible) == 0 {
		return false
	}
	c := eligible[s.rng.Intn(len(eligible))]
	s.triggerCrisis(&c)
	s.state.UpdatedAt = time.Now()
	return true
}

// CompleteLesson records a lesson as completed. Set semantics: a
// second completion of the same lesson changes nothing.
func (s *Session) CompleteLesson(lessonID string) *GameState {
	gs := s.state
	if lessonID != "" && !gs.HasCompletedLesson(lessonID) {
		gs.CompletedLessons = append(gs.CompletedLessons, lessonID)
		gs.UpdatedAt = time.Now()
	}
	return gs
}

// maybeTriggerCrisis rolls the per-advance crisis chance while no
// crisis is active and the current era still has unfired crises.
func (s *Session) maybeTriggerCrisis() bool {
	if s.state.CurrentCrisis != nil {
		return false
	}
	eligible := s.eligibleCrises()
	if len(eligible) == 0 {
		return false
	}
	if s.rng.Float64() >= crisisTriggerChance {
		return false
	}
	c := eligible[s.rng.Intn(len(eligible))]
	s.triggerCrisis(&c)
	return true
}

// sampleDecision enqueues one catalog decision chosen uniformly among
// those neither pending nor resolved.
func (s *Session) sampleDecision() bool {
	var candidates []catalog.Decision
	for _, d := range s.catalog.Decisions {
		if s.state.isPending(d.ID) || s.state.wasResolved(d.ID) {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		if s.logger != nil {
			s.logger.Debug("Decision catalog exhausted", "session_id", s.state.ID)
		}
		return false
	}

	d := candidates[s.rng.Intn(len(candidates))]
	return s.state.enqueueDecision(d, "")
}
