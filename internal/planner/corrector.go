package planner

import (
	"fmt"
	"strings"

	"strideworks/plan-engine/internal/domain"
)

// Rationale tags appended when the mix corrector swaps a selection.
const (
	MixPolicyDiversified = "mix_policy_diversified"
	MixPolicySpecificity = "mix_policy_specificity"
)

// WeekSelection is one resolved slot of a week while it moves through the
// post-selection passes. Template is nil when no canonical match was found.
type WeekSelection struct {
	Token     string
	Template  *domain.SessionTemplate
	Reason    string
	Rationale []string
}

// primaryCode resolves the selection's dominant intensity code: stamped
// main_set metadata first, then intent keyword inference.
func primaryCode(t *domain.SessionTemplate) string {
	if t == nil {
		return ""
	}
	if code := t.PrimaryIntensityCode(); code != "" {
		return code
	}
	return codeForIntent(t.Intent)
}

// CorrectWeekMix runs once per week after all tokens are resolved and fixes
// the two known ways raw selection can skew the intended intensity mix:
//
//   - short-race build/peak weeks that ended up with two threshold sessions
//     and no VO2 work get one swapped to an I-coded template;
//   - endurance build/peak weeks with no marathon-pace work get one race-pace
//     slot swapped to an M-coded template.
//
// Each rule applies at most once, to the first matching slot only. The input
// slice is returned with at most those swaps applied in place.
func CorrectWeekMix(selections []WeekSelection, catalog *Catalog, ctx WeekContext) []WeekSelection {
	if ctx.Phase != domain.PhaseBuild && ctx.Phase != domain.PhasePeak {
		return selections
	}
	counts := map[string]int{}
	for i := range selections {
		if code := primaryCode(selections[i].Template); code != "" {
			counts[code]++
		}
	}

	if IsShortRaceFocus(ctx.RaceFocus) && counts[CodeThreshold] >= 2 && counts[CodeInterval] == 0 {
		diversifyShortRaceWeek(selections, catalog, ctx)
	}
	if IsEnduranceFocus(ctx.RaceFocus) && counts[CodeMarathon] == 0 {
		restoreEnduranceSpecificity(selections, catalog, ctx)
	}
	return selections
}

func diversifyShortRaceWeek(selections []WeekSelection, catalog *Catalog, ctx WeekContext) {
	idx := firstTokenMatching(selections, "race pace", "interval")
	if idx < 0 {
		return
	}
	step := ResolveLadder(LadderVO2, ctx)
	candidates := catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("vo2", "interval"),
		requireCodes:  []string{CodeInterval},
	})
	replacement := pickBest(candidates, step.TargetMainMinutes, step.TargetMainMinutes+30)
	if replacement == nil {
		return
	}
	prev := selectionName(&selections[idx])
	selections[idx].Template = replacement
	selections[idx].Rationale = append(selections[idx].Rationale, fmt.Sprintf(
		"%s: swapped %s for %s to restore threshold/VO2 balance", MixPolicyDiversified, prev, replacement.Name))
}

func restoreEnduranceSpecificity(selections []WeekSelection, catalog *Catalog, ctx WeekContext) {
	idx := firstTokenMatching(selections, "race pace", "marathon pace")
	if idx < 0 {
		return
	}
	step := ResolveLadder(LadderMarathonPace, ctx)
	targetDuration := step.TargetMainMinutes + 25
	// When the matched slot is the long run, keep the swap duration-matched
	// to the session it replaces.
	if strings.Contains(strings.ToLower(selections[idx].Token), "long run") && selections[idx].Template != nil {
		targetDuration = selections[idx].Template.DurationMin
	}
	candidates := catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("marathon"),
		requireCodes:  []string{CodeMarathon},
	})
	replacement := pickBest(candidates, step.TargetMainMinutes, targetDuration)
	if replacement == nil {
		return
	}
	prev := selectionName(&selections[idx])
	selections[idx].Template = replacement
	selections[idx].Rationale = append(selections[idx].Rationale, fmt.Sprintf(
		"%s: swapped %s for %s to keep race-specific M work in the week", MixPolicySpecificity, prev, replacement.Name))
}

func firstTokenMatching(selections []WeekSelection, subs ...string) int {
	for i := range selections {
		token := strings.ToLower(selections[i].Token)
		for _, sub := range subs {
			if strings.Contains(token, sub) {
				return i
			}
		}
	}
	return -1
}

func selectionName(sel *WeekSelection) string {
	if sel.Template != nil {
		return sel.Template.Name
	}
	return sel.Token
}
