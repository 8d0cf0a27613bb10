package planner

import (
	"math"
	"strings"

	"strideworks/plan-engine/internal/domain"
)

// Catalog is the read-only, per-planning-call view of the canonical template
// library. The slice order is the accessor's order (duration ascending, then
// id ascending) and doubles as the deterministic tie-break for selection.
type Catalog struct {
	templates []domain.SessionTemplate
}

// NewCatalog wraps a canonical template snapshot. The snapshot is not copied;
// callers must not mutate it for the lifetime of the planning call.
func NewCatalog(templates []domain.SessionTemplate) *Catalog {
	return &Catalog{templates: templates}
}

// Empty reports whether the canonical library has no templates at all.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.templates) == 0
}

// Templates returns the underlying snapshot in catalog order.
func (c *Catalog) Templates() []domain.SessionTemplate {
	if c == nil {
		return nil
	}
	return c.templates
}

// FindByName returns the template whose name equals the given string
// verbatim, or nil.
func (c *Catalog) FindByName(name string) *domain.SessionTemplate {
	for i := range c.templates {
		if c.templates[i].Name == name {
			return &c.templates[i]
		}
	}
	return nil
}

// templateFilter narrows the canonical set for one selector family.
type templateFilter struct {
	intentAllowed func(intent string) bool
	requireCodes  []string // every code must appear among main_set codes
	excludeCodes  []string // none of these may appear
	nameAllOf     []string // lowercase substrings, all required
	nameAnyOf     []string // lowercase substrings, at least one required
}

// effectiveMainSetCodes returns the template's explicit main_set codes, or a
// single code inferred from its intent when the catalog entry predates code
// stamping. Untagged legacy templates still have to pass code filters.
func effectiveMainSetCodes(t *domain.SessionTemplate) []string {
	if codes := t.MainSetCodes(); len(codes) > 0 {
		return codes
	}
	if code := codeForIntent(t.Intent); code != "" {
		return []string{code}
	}
	return nil
}

func (c *Catalog) filter(f templateFilter) []domain.SessionTemplate {
	var out []domain.SessionTemplate
	for _, t := range c.templates {
		if f.intentAllowed != nil && !f.intentAllowed(strings.ToLower(t.Intent)) {
			continue
		}
		codes := effectiveMainSetCodes(&t)
		if !containsAllCodes(codes, f.requireCodes) {
			continue
		}
		if containsAnyCode(codes, f.excludeCodes) {
			continue
		}
		name := strings.ToLower(t.Name)
		if !nameMatchesAll(name, f.nameAllOf) {
			continue
		}
		if len(f.nameAnyOf) > 0 && !nameMatchesAny(name, f.nameAnyOf) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func containsAllCodes(codes, wanted []string) bool {
	for _, w := range wanted {
		found := false
		for _, c := range codes {
			if c == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsAnyCode(codes, banned []string) bool {
	for _, b := range banned {
		for _, c := range codes {
			if c == b {
				return true
			}
		}
	}
	return false
}

func nameMatchesAll(name string, subs []string) bool {
	for _, s := range subs {
		if !strings.Contains(name, s) {
			return false
		}
	}
	return true
}

func nameMatchesAny(name string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// tierPreferencePenalty orders difficulty tiers for tie-breaking: medium
// beats hard beats easy beats anything else.
func tierPreferencePenalty(tier string) int {
	switch strings.ToLower(tier) {
	case "medium":
		return 0
	case "hard":
		return 1
	case "easy":
		return 2
	default:
		return 3
	}
}

// pickBest chooses the candidate minimising the score tuple
// (|mainSetMinutes - targetMain|, |durationMin - targetDuration|,
// tierPenalty), compared lexicographically. Ties keep the earliest candidate,
// so catalog iteration order is the final, stable tie-break.
func pickBest(candidates []domain.SessionTemplate, targetMain, targetDuration float64) *domain.SessionTemplate {
	var best *domain.SessionTemplate
	var bestScore [3]float64
	for i := range candidates {
		t := &candidates[i]
		score := [3]float64{
			math.Abs(t.MainSetMinutes() - targetMain),
			math.Abs(t.DurationMin - targetDuration),
			float64(tierPreferencePenalty(t.Tier)),
		}
		if best == nil || scoreLess(score, bestScore) {
			best = t
			bestScore = score
		}
	}
	return best
}

func scoreLess(a, b [3]float64) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
