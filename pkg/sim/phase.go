package sim

// Phase is the coarse segment of the simulated term the session is in.
// It is derived purely from elapsed time, except that a collapse of the
// indicators can force PhaseEnding early.
type Phase string

const (
	PhaseIntro  Phase = "intro"
	PhaseEra1   Phase = "era1"
	PhaseEra2   Phase = "era2"
	PhaseEra3   Phase = "era3"
	PhaseEra4   Phase = "era4"
	PhaseEra5   Phase = "era5"
	PhaseEnding Phase = "ending"
)

// Calendar constants for the fixed five-year term.
const (
	StartYear  = 2035
	StartMonth = 1
	TermMonths = 60

	// DaysPerMonth approximates the crisis countdown granularity.
	DaysPerMonth = 30
)

var eraPhases = [...]Phase{PhaseEra1, PhaseEra2, PhaseEra3, PhaseEra4, PhaseEra5}

// Era gives the phase an explicit ordering: 0 for intro, 1..5 for the
// eras, 6 for ending. Phase comparisons go through this, never through
// string inspection.
func (p Phase) Era() int {
	switch p {
	case PhaseIntro:
		return 0
	case PhaseEra1:
		return 1
	case PhaseEra2:
		return 2
	case PhaseEra3:
		return 3
	case PhaseEra4:
		return 4
	case PhaseEra5:
		return 5
	case PhaseEnding:
		return 6
	}
	return 0
}

// Terminal reports whether the phase is the ending phase.
func (p Phase) Terminal() bool {
	return p == PhaseEnding
}

// PhaseForElapsed derives the phase from whole months elapsed since the
// term start. Each era spans one year of the five-year term; anything
// past the term is the ending.
func PhaseForElapsed(months int) Phase {
	if months < 0 {
		months = 0
	}
	yearInTerm := months / 12
	if yearInTerm >= len(eraPhases) {
		return PhaseEnding
	}
	return eraPhases[yearInTerm]
}

// termProgress is the percentage of the term elapsed, clamped to 0..100.
func termProgress(months int) float64 {
	if months <= 0 {
		return 0
	}
	if months >= TermMonths {
		return 100
	}
	return float64(months) / TermMonths * 100
}
