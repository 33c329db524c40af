package catalog

// Indicator names one of the three bounded simulation scores.
type Indicator string

const (
	IndicatorNetworkHealth    Indicator = "network_health"
	IndicatorPublicConfidence Indicator = "public_confidence"
	IndicatorTechAdvancement  Indicator = "tech_advancement"
)

// Valid reports whether the indicator is one the simulation tracks.
// Unknown indicators are tolerated in content (consequences naming
// them are applied as no-ops), but the validator flags them.
func (i Indicator) Valid() bool {
	switch i {
	case IndicatorNetworkHealth, IndicatorPublicConfidence, IndicatorTechAdvancement:
		return true
	}
	return false
}

// Urgency describes how pressing a crisis is. It is descriptive only;
// the engine does not weight crisis selection by urgency.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// Consequence is an atomic effect on one indicator.
type Consequence struct {
	Type        Indicator `json:"type" yaml:"type"`
	Change      int       `json:"change" yaml:"change"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// DecisionOption is one selectable branch of a Decision.
type DecisionOption struct {
	ID              string        `json:"id" yaml:"id"`
	Text            string        `json:"text" yaml:"text"`
	Consequences    []Consequence `json:"consequences" yaml:"consequences"`
	EducationalNote string        `json:"educational_note,omitempty" yaml:"educational_note,omitempty"`
}

// Decision is an offered choice point. Definitions are immutable once
// loaded; the engine copies them into pending queues and history.
type Decision struct {
	ID                 string           `json:"id" yaml:"id"`
	Title              string           `json:"title" yaml:"title"`
	Description        string           `json:"description" yaml:"description"`
	Options            []DecisionOption `json:"options" yaml:"options"`
	EducationalContent string           `json:"educational_content,omitempty" yaml:"educational_content,omitempty"`
}

// Option returns the option with the given id, if the decision has one.
func (d *Decision) Option(optionID string) (*DecisionOption, bool) {
	for i := range d.Options {
		if d.Options[i].ID == optionID {
			return &d.Options[i], true
		}
	}
	return nil, false
}

// Crisis is a time-boxed, higher-stakes bundle of decisions tied to an
// era. TimeLimitDays of 0 means the crisis never expires on its own.
type Crisis struct {
	ID          string  `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description" yaml:"description"`
	Era         int     `json:"era" yaml:"era"` // 1..5
	Urgency     Urgency `json:"urgency" yaml:"urgency"`

	// Decisions are the crisis's sub-decisions, all enqueued when the
	// crisis triggers.
	Decisions []Decision `json:"decisions" yaml:"decisions"`

	TimeLimitDays int `json:"time_limit_days,omitempty" yaml:"time_limit_days,omitempty"`

	// UnresolvedPenalty, when set, is the consequence template applied
	// at every era transition the crisis remains unresolved, scaled by
	// the number of eras it has been ignored.
	UnresolvedPenalty *Consequence `json:"unresolved_penalty,omitempty" yaml:"unresolved_penalty,omitempty"`
}

// Lesson is a piece of educational content referenced by id. The
// engine only tracks completion membership.
type Lesson struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Catalog is the externally supplied content for one game variant.
type Catalog struct {
	Name        string `json:"name" yaml:"name"`
	FileName    string `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// InitialIndicators overrides the engine's default starting scores
	// for the indicators it names.
	InitialIndicators map[Indicator]int `json:"initial_indicators,omitempty" yaml:"initial_indicators,omitempty"`

	Decisions []Decision `json:"decisions" yaml:"decisions"`
	Crises    []Crisis   `json:"crises,omitempty" yaml:"crises,omitempty"`
	Lessons   []Lesson   `json:"lessons,omitempty" yaml:"lessons,omitempty"`
}

// FindDecision returns the catalog decision with the given id.
func (c *Catalog) FindDecision(id string) (*Decision, bool) {
	for i := range c.Decisions {
		if c.Decisions[i].ID == id {
			return &c.Decisions[i], true
		}
	}
	return nil, false
}

// FindCrisis returns the crisis with the given id, searching the
// whole catalog regardless of era.
func (c *Catalog) FindCrisis(id string) (*Crisis, bool) {
	for i := range c.Crises {
		if c.Crises[i].ID == id {
			return &c.Crises[i], true
		}
	}
	return nil, false
}

// CrisesForEra returns the crises tagged for the given era (1..5).
func (c *Catalog) CrisesForEra(era int) []Crisis {
	var out []Crisis
	for _, cr := range c.Crises {
		if cr.Era == era {
			out = append(out, cr)
		}
	}
	return out
}
