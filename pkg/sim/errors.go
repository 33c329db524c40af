package sim

import "errors"

// Expected invalid-operation conditions. The engine reports these as
// typed errors and leaves the game state untouched; callers translate
// them into user-facing messages.
var (
	// ErrDecisionNotPending is returned when a decision id is not in
	// the pending queue, including double resolution of the same id.
	ErrDecisionNotPending = errors.New("decision is not pending")

	// ErrOptionNotFound is returned when the chosen option does not
	// belong to the decision being resolved.
	ErrOptionNotFound = errors.New("option does not belong to decision")

	// ErrInvalidMonths is returned for negative time advances.
	ErrInvalidMonths = errors.New("months must not be negative")
)
