package sim

import "github.com/elitelephant/protocol-guardian/pkg/catalog"

// Crisis lifecycle: Dormant -> Active -> Resolved | Expired.
// At most one crisis is active per session. Expired crises accumulate
// in UnresolvedCrises and are punished at every era transition.

// triggerCrisis activates a crisis: seeds the countdown from its time
// limit and enqueues all of its sub-decisions. Each crisis fires at
// most once per session.
func (s *Session) triggerCrisis(c *catalog.Crisis) {
	gs := s.state

	active := &ActiveCrisis{CrisisID: c.ID}
	if c.TimeLimitDays > 0 {
		days := c.TimeLimitDays
		active.DaysRemaining = &days
	}
	gs.CurrentCrisis = active
	gs.TriggeredCrises = append(gs.TriggeredCrises, c.ID)

	for _, d := range c.Decisions {
		gs.enqueueDecision(d, c.ID)
	}

	if s.logger != nil {
		s.logger.Info("Crisis triggered",
			"session_id", gs.ID,
			"crisis_id", c.ID,
			"urgency", c.Urgency,
			"time_limit_days", c.TimeLimitDays,
			"sub_decisions", len(c.Decisions))
	}
}

// expireActiveCrisis handles a countdown reaching zero: the crisis is
// recorded as unresolved and its still-pending sub-decisions are left
// in the queue, marked stale rather than silently discarded.
func (s *Session) expireActiveCrisis() {
	gs := s.state
	if gs.CurrentCrisis == nil {
		return
	}

	crisisID := gs.CurrentCrisis.CrisisID
	gs.UnresolvedCrises = append(gs.UnresolvedCrises, UnresolvedCrisis{
		CrisisID:       crisisID,
		ErasUnresolved: 0,
	})
	gs.markCrisisDecisionsStale(crisisID)
	gs.CurrentCrisis = nil

	if s.logger != nil {
		s.logger.Warn("Crisis expired unresolved",
			"session_id", gs.ID,
			"crisis_id", crisisID,
			"stale_pending", gs.pendingForCrisis(crisisID))
	}
}

// applyUnresolvedPenalties runs at each era transition: every
// unresolved crisis gets one era older, and its penalty is applied
// scaled by how many eras it has been ignored. Two ignored eras cost
// twice the base penalty on the second application, not the base again.
func (s *Session) applyUnresolvedPenalties() {
	gs := s.state
	for i := range gs.UnresolvedCrises {
		rec := &gs.UnresolvedCrises[i]
		rec.ErasUnresolved++

		def, ok := s.catalog.FindCrisis(rec.CrisisID)
		if !ok || def.UnresolvedPenalty == nil {
			continue
		}

		penalty := catalog.Consequence{
			Type:        def.UnresolvedPenalty.Type,
			Change:      def.UnresolvedPenalty.Change * rec.ErasUnresolved,
			Description: def.UnresolvedPenalty.Description,
		}
		gs.Indicators = gs.Indicators.Apply([]catalog.Consequence{penalty})

		if s.logger != nil {
			s.logger.Warn("Unresolved crisis penalty applied",
				"session_id", gs.ID,
				"crisis_id", rec.CrisisID,
				"eras_unresolved", rec.ErasUnresolved,
				"indicator", penalty.Type,
				"change", penalty.Change)
		}
	}
}

// eligibleCrises returns the current era's crises that have not fired
// yet this session.
func (s *Session) eligibleCrises() []catalog.Crisis {
	era := s.state.Phase.Era()
	if era < catalog.MinEra || era > catalog.MaxEra {
		return nil
	}

	var out []catalog.Crisis
	for _, c := range s.catalog.CrisesForEra(era) {
		if !s.state.hasTriggeredCrisis(c.ID) {
			out = append(out, c)
		}
	}
	return out
}
