package sim

import (
	"testing"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
)

func TestIndicators_Apply(t *testing.T) {
	tests := []struct {
		name         string
		start        Indicators
		consequences []catalog.Consequence
		expected     Indicators
	}{
		{
			name:  "simple additive changes",
			start: Indicators{NetworkHealth: 50, PublicConfidence: 50, TechAdvancement: 50},
			consequences: []catalog.Consequence{
				{Type: catalog.IndicatorNetworkHealth, Change: 10},
				{Type: catalog.IndicatorPublicConfidence, Change: -5},
				{Type: catalog.IndicatorTechAdvancement, Change: 15},
			},
			expected: Indicators{NetworkHealth: 60, PublicConfidence: 45, TechAdvancement: 65},
		},
		{
			name:  "clamped at upper bound",
			start: Indicators{NetworkHealth: 95, PublicConfidence: 50, TechAdvancement: 50},
			consequences: []catalog.Consequence{
				{Type: catalog.IndicatorNetworkHealth, Change: 20},
			},
			expected: Indicators{NetworkHealth: 100, PublicConfidence: 50, TechAdvancement: 50},
		},
		{
			name:  "clamped at lower bound",
			start: Indicators{NetworkHealth: 50, PublicConfidence: 10, TechAdvancement: 50},
			consequences: []catalog.Consequence{
				{Type: catalog.IndicatorPublicConfidence, Change: -30},
			},
			expected: Indicators{NetworkHealth: 50, PublicConfidence: 0, TechAdvancement: 50},
		},
		{
			name:  "unknown indicator ignored",
			start: Indicators{NetworkHealth: 50, PublicConfidence: 50, TechAdvancement: 50},
			consequences: []catalog.Consequence{
				{Type: catalog.Indicator("quantum_readiness"), Change: 40},
				{Type: catalog.IndicatorNetworkHealth, Change: 5},
			},
			expected: Indicators{NetworkHealth: 55, PublicConfidence: 50, TechAdvancement: 50},
		},
		{
			name:  "multiple consequences on same indicator sum before reading",
			start: Indicators{NetworkHealth: 90, PublicConfidence: 50, TechAdvancement: 50},
			consequences: []catalog.Consequence{
				{Type: catalog.IndicatorNetworkHealth, Change: 20},
				{Type: catalog.IndicatorNetworkHealth, Change: -15},
			},
			expected: Indicators{NetworkHealth: 85, PublicConfidence: 50, TechAdvancement: 50},
		},
		{
			name:         "empty consequence list is identity",
			start:        Indicators{NetworkHealth: 33, PublicConfidence: 44, TechAdvancement: 55},
			consequences: nil,
			expected:     Indicators{NetworkHealth: 33, PublicConfidence: 44, TechAdvancement: 55},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.Apply(tt.consequences)
			if got != tt.expected {
				t.Errorf("Apply() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestIndicators_ApplyZeroNetIsIdempotent(t *testing.T) {
	start := Indicators{NetworkHealth: 50, PublicConfidence: 50, TechAdvancement: 50}
	zeroNet := []catalog.Consequence{
		{Type: catalog.IndicatorTechAdvancement, Change: 10},
		{Type: catalog.IndicatorTechAdvancement, Change: -10},
	}

	got := start
	for i := 0; i < 5; i++ {
		got = got.Apply(zeroNet)
	}
	if got != start {
		t.Errorf("repeated zero-net application changed indicators: %+v", got)
	}
}

func TestIndicators_BoundsInvariant(t *testing.T) {
	// Hammer one indicator with large swings; it must never leave
	// [MinScore, MaxScore].
	in := Indicators{NetworkHealth: 50, PublicConfidence: 50, TechAdvancement: 50}
	swings := []int{90, -200, 40, 70, -5, 300, -300}
	for _, delta := range swings {
		in = in.Apply([]catalog.Consequence{{Type: catalog.IndicatorNetworkHealth, Change: delta}})
		if in.NetworkHealth < MinScore || in.NetworkHealth > MaxScore {
			t.Fatalf("network health %d outside [%d,%d] after delta %d", in.NetworkHealth, MinScore, MaxScore, delta)
		}
	}
}

func TestIndicators_Get(t *testing.T) {
	in := Indicators{NetworkHealth: 10, PublicConfidence: 20, TechAdvancement: 30}

	if v, ok := in.Get(catalog.IndicatorPublicConfidence); !ok || v != 20 {
		t.Errorf("Get(public_confidence) = %d, %v", v, ok)
	}
	if _, ok := in.Get(catalog.Indicator("unknown")); ok {
		t.Error("Get should report untracked indicators")
	}
}

func TestIndicators_MaxMin(t *testing.T) {
	in := Indicators{NetworkHealth: 70, PublicConfidence: 50, TechAdvancement: 45}
	if in.Max() != 70 {
		t.Errorf("Max() = %d, expected 70", in.Max())
	}
	if in.Min() != 45 {
		t.Errorf("Min() = %d, expected 45", in.Min())
	}
}
