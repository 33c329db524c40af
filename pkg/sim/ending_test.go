package sim

import "testing"

func TestResolveEnding(t *testing.T) {
	tests := []struct {
		name     string
		in       Indicators
		expected EndingType
	}{
		{
			name:     "narrow spread is balanced even with a dominant indicator",
			in:       Indicators{NetworkHealth: 70, PublicConfidence: 50, TechAdvancement: 45},
			expected: EndingBalanced, // spread exactly 25
		},
		{
			name:     "all equal is balanced",
			in:       Indicators{NetworkHealth: 50, PublicConfidence: 50, TechAdvancement: 50},
			expected: EndingBalanced,
		},
		{
			name:     "network health strictly highest",
			in:       Indicators{NetworkHealth: 80, PublicConfidence: 40, TechAdvancement: 30},
			expected: EndingGuardian,
		},
		{
			name:     "public confidence strictly highest",
			in:       Indicators{NetworkHealth: 30, PublicConfidence: 85, TechAdvancement: 40},
			expected: EndingDiplomat,
		},
		{
			name:     "tech advancement strictly highest",
			in:       Indicators{NetworkHealth: 20, PublicConfidence: 35, TechAdvancement: 90},
			expected: EndingInnovator,
		},
		{
			name:     "wide spread below dominance threshold still picks the leader",
			in:       Indicators{NetworkHealth: 60, PublicConfidence: 20, TechAdvancement: 30},
			expected: EndingGuardian,
		},
		{
			name:     "two-way tie at the top with wide spread is compromised",
			in:       Indicators{NetworkHealth: 80, PublicConfidence: 80, TechAdvancement: 20},
			expected: EndingCompromised,
		},
		{
			name:     "spread just past the balanced threshold",
			in:       Indicators{NetworkHealth: 71, PublicConfidence: 50, TechAdvancement: 45},
			expected: EndingGuardian, // spread 26
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveEnding(tt.in); got != tt.expected {
				t.Errorf("ResolveEnding(%+v) = %q, expected %q", tt.in, got, tt.expected)
			}
		})
	}
}
