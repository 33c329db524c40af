package sim

import "github.com/elitelephant/protocol-guardian/pkg/catalog"

// Queue operations over the pending-decision list. The list lives on
// GameState so it serializes with the session.

// isPending reports whether a decision with the given id is queued.
func (gs *GameState) isPending(decisionID string) bool {
	for i := range gs.PendingDecisions {
		if gs.PendingDecisions[i].ID == decisionID {
			return true
		}
	}
	return false
}

// enqueueDecision appends a decision to the pending queue unless one
// with the same id is already queued. Returns whether it was added.
func (gs *GameState) enqueueDecision(d catalog.Decision, crisisID string) bool {
	if gs.isPending(d.ID) {
		return false
	}
	gs.PendingDecisions = append(gs.PendingDecisions, PendingDecision{
		Decision:    d,
		IssuedYear:  gs.CurrentYear,
		IssuedMonth: gs.CurrentMonth,
		CrisisID:    crisisID,
	})
	return true
}

// dequeueDecision removes and returns the pending decision with the
// given id.
func (gs *GameState) dequeueDecision(decisionID string) (PendingDecision, bool) {
	for i := range gs.PendingDecisions {
		if gs.PendingDecisions[i].ID == decisionID {
			pd := gs.PendingDecisions[i]
			gs.PendingDecisions = append(gs.PendingDecisions[:i], gs.PendingDecisions[i+1:]...)
			return pd, true
		}
	}
	return PendingDecision{}, false
}

// pendingForCrisis counts queued sub-decisions belonging to a crisis.
func (gs *GameState) pendingForCrisis(crisisID string) int {
	n := 0
	for i := range gs.PendingDecisions {
		if gs.PendingDecisions[i].CrisisID == crisisID {
			n++
		}
	}
	return n
}

// markCrisisDecisionsStale flags the queued sub-decisions of an expired
// crisis. They stay answerable; the flag is purely informational.
func (gs *GameState) markCrisisDecisionsStale(crisisID string) {
	for i := range gs.PendingDecisions {
		if gs.PendingDecisions[i].CrisisID == crisisID {
			gs.PendingDecisions[i].Stale = true
		}
	}
}

// wasResolved reports whether the decision id is in the history.
func (gs *GameState) wasResolved(decisionID string) bool {
	for i := range gs.History {
		if gs.History[i].ID == decisionID {
			return true
		}
	}
	return false
}
