package sim

import "github.com/elitelephant/protocol-guardian/pkg/catalog"

// Indicator score bounds. Every mutation clamps into this range.
const (
	MinScore = 0
	MaxScore = 100
)

// Default starting scores, used where a catalog does not override them.
const (
	DefaultNetworkHealth    = 70
	DefaultPublicConfidence = 65
	DefaultTechAdvancement  = 40
)

// Indicators holds the three bounded simulation scores.
type Indicators struct {
	NetworkHealth    int `json:"network_health"`
	PublicConfidence int `json:"public_confidence"`
	TechAdvancement  int `json:"tech_advancement"`
}

func clampScore(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// Get returns the value of the named indicator. The second return is
// false for indicators the simulation does not track.
func (in Indicators) Get(name catalog.Indicator) (int, bool) {
	switch name {
	case catalog.IndicatorNetworkHealth:
		return in.NetworkHealth, true
	case catalog.IndicatorPublicConfidence:
		return in.PublicConfidence, true
	case catalog.IndicatorTechAdvancement:
		return in.TechAdvancement, true
	}
	return 0, false
}

// Apply returns a copy of the indicators with the consequences applied
// in order, each addition clamped to [MinScore, MaxScore]. Consequences
// naming an untracked indicator are ignored so older engines tolerate
// newer content.
func (in Indicators) Apply(consequences []catalog.Consequence) Indicators {
	out := in
	for _, c := range consequences {
		switch c.Type {
		case catalog.IndicatorNetworkHealth:
			out.NetworkHealth = clampScore(out.NetworkHealth + c.Change)
		case catalog.IndicatorPublicConfidence:
			out.PublicConfidence = clampScore(out.PublicConfidence + c.Change)
		case catalog.IndicatorTechAdvancement:
			out.TechAdvancement = clampScore(out.TechAdvancement + c.Change)
		}
	}
	return out
}

// Max returns the highest of the three scores.
func (in Indicators) Max() int {
	m := in.NetworkHealth
	if in.PublicConfidence > m {
		m = in.PublicConfidence
	}
	if in.TechAdvancement > m {
		m = in.TechAdvancement
	}
	return m
}

// Min returns the lowest of the three scores.
func (in Indicators) Min() int {
	m := in.NetworkHealth
	if in.PublicConfidence < m {
		m = in.PublicConfidence
	}
	if in.TechAdvancement < m {
		m = in.TechAdvancement
	}
	return m
}
