package sim

// EndingType is the terminal narrative classification of a session.
type EndingType string

const (
	// EndingBalanced: the indicators finished within a narrow spread of
	// each other, no single priority dominated the term.
	EndingBalanced EndingType = "balanced"

	// EndingGuardian: network health finished clearly highest.
	EndingGuardian EndingType = "guardian"

	// EndingDiplomat: public confidence finished clearly highest.
	EndingDiplomat EndingType = "diplomat"

	// EndingInnovator: tech advancement finished clearly highest.
	EndingInnovator EndingType = "innovator"

	// EndingCompromised is the residual outcome: a wide spread with no
	// strict single leader, or a collapse-driven exact tie.
	EndingCompromised EndingType = "compromised"
)

// balancedSpread is the largest max-min indicator spread still
// classified as a balanced term.
const balancedSpread = 25

// ResolveEnding classifies final indicator values. The balance check
// takes precedence: a spread of at most balancedSpread is balanced even
// when one indicator is individually high. Otherwise the strictly
// greatest indicator picks the archetype, and any tie at the top falls
// through to the compromised outcome.
func ResolveEnding(in Indicators) EndingType {
	if in.Max()-in.Min() <= balancedSpread {
		return EndingBalanced
	}

	switch {
	case in.NetworkHealth > in.PublicConfidence && in.NetworkHealth > in.TechAdvancement:
		return EndingGuardian
	case in.PublicConfidence > in.NetworkHealth && in.PublicConfidence > in.TechAdvancement:
		return EndingDiplomat
	case in.TechAdvancement > in.NetworkHealth && in.TechAdvancement > in.PublicConfidence:
		return EndingInnovator
	}

	return EndingCompromised
}
