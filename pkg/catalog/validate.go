package catalog

import (
	"fmt"
	"strings"
)

const (
	MinEra = 1
	MaxEra = 5
)

// Validate checks the catalog for structural problems: duplicate ids,
// decisions without options, crises outside the era range, unknown
// indicator or urgency tags. It returns all problems joined into one
// error so content authors can fix a file in a single pass.
func (c *Catalog) Validate() error {
	var errs []string

	if c.Name == "" {
		errs = append(errs, "catalog name is required")
	}
	if len(c.Decisions) == 0 {
		errs = append(errs, "catalog must contain at least one decision")
	}

	for ind := range c.InitialIndicators {
		if !ind.Valid() {
			errs = append(errs, fmt.Sprintf("initial_indicators: unknown indicator %q", ind))
		}
	}

	seenDecisions := make(map[string]bool)
	for _, d := range c.Decisions {
		errs = append(errs, validateDecision(&d, seenDecisions, "decision")...)
	}

	seenCrises := make(map[string]bool)
	for _, cr := range c.Crises {
		if cr.ID == "" {
			errs = append(errs, "crisis with empty id")
			continue
		}
		if seenCrises[cr.ID] {
			errs = append(errs, fmt.Sprintf("duplicate crisis id %q", cr.ID))
		}
		seenCrises[cr.ID] = true

		if cr.Era < MinEra || cr.Era > MaxEra {
			errs = append(errs, fmt.Sprintf("crisis %q: era %d out of range %d..%d", cr.ID, cr.Era, MinEra, MaxEra))
		}
		if cr.Urgency != "" && !cr.Urgency.Valid() {
			errs = append(errs, fmt.Sprintf("crisis %q: unknown urgency %q", cr.ID, cr.Urgency))
		}
		if len(cr.Decisions) == 0 {
			errs = append(errs, fmt.Sprintf("crisis %q: must carry at least one sub-decision", cr.ID))
		}
		if cr.TimeLimitDays < 0 {
			errs = append(errs, fmt.Sprintf("crisis %q: negative time limit", cr.ID))
		}
		if cr.UnresolvedPenalty != nil && !cr.UnresolvedPenalty.Type.Valid() {
			errs = append(errs, fmt.Sprintf("crisis %q: unresolved_penalty targets unknown indicator %q", cr.ID, cr.UnresolvedPenalty.Type))
		}
		for _, d := range cr.Decisions {
			errs = append(errs, validateDecision(&d, seenDecisions, fmt.Sprintf("crisis %q decision", cr.ID))...)
		}
	}

	seenLessons := make(map[string]bool)
	for _, l := range c.Lessons {
		if l.ID == "" {
			errs = append(errs, "lesson with empty id")
			continue
		}
		if seenLessons[l.ID] {
			errs = append(errs, fmt.Sprintf("duplicate lesson id %q", l.ID))
		}
		seenLessons[l.ID] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDecision(d *Decision, seen map[string]bool, context string) []string {
	var errs []string

	if d.ID == "" {
		return []string{fmt.Sprintf("%s with empty id", context)}
	}
	if seen[d.ID] {
		errs = append(errs, fmt.Sprintf("duplicate decision id %q", d.ID))
	}
	seen[d.ID] = true

	if d.Title == "" {
		errs = append(errs, fmt.Sprintf("%s %q: title is required", context, d.ID))
	}
	if len(d.Options) == 0 {
		errs = append(errs, fmt.Sprintf("%s %q: must offer at least one option", context, d.ID))
	}

	seenOptions := make(map[string]bool)
	for _, o := range d.Options {
		if o.ID == "" {
			errs = append(errs, fmt.Sprintf("%s %q: option with empty id", context, d.ID))
			continue
		}
		if seenOptions[o.ID] {
			errs = append(errs, fmt.Sprintf("%s %q: duplicate option id %q", context, d.ID, o.ID))
		}
		seenOptions[o.ID] = true
		if o.Text == "" {
			errs = append(errs, fmt.Sprintf("%s %q: option %q has no text", context, d.ID, o.ID))
		}
		// Unknown consequence indicators are a content mistake even
		// though the engine ignores them at apply time.
		for _, cons := range o.Consequences {
			if !cons.Type.Valid() {
				errs = append(errs, fmt.Sprintf("%s %q: option %q consequence targets unknown indicator %q", context, d.ID, o.ID, cons.Type))
			}
		}
	}

	return errs
}
