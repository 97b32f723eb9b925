// Package score is the deterministic risk-quality engine. It backs demo
// mode and every fallback path, so it must be a pure function of its
// input: same batch in, same result out.
package score

import (
	"fmt"
	"math"
	"strings"

	"github.com/pmtooling/riskpilot/internal/risk"
)

// Suggestion strings are fixed so UI fixtures and tests can match on them.
const (
	SuggestionBriefDescription = "Risk description is too brief - describe the event, condition, and consequence"
	SuggestionConditional      = "Phrase the risk as a conditional: 'If X occurs, then Y'"
	SuggestionVagueLanguage    = "Avoid vague language - name the specific event and its consequence"
	SuggestionNoMitigation     = "Mitigation is missing or incomplete - describe how the risk will be handled"
	SuggestionBriefMitigation  = "Mitigation is too brief - add concrete steps"
	SuggestionActionVerbs      = "Use action verbs (implement, establish, monitor) in the mitigation"
	SuggestionGenericPhrasing  = "Avoid generic mitigation phrasing like 'fix it' or 'be careful'"
	SuggestionAssignOwner      = "Assign a risk owner for accountability"
	SuggestionAssignCategory   = "Assign a category to group related risks"
	SuggestionWellDefined      = "Risk is well-defined with an actionable mitigation"

	// HighPriorityMarker is always the first suggestion on a deficient
	// high-probability high-impact risk.
	HighPriorityMarker = "HIGH-PRIORITY RISK: high probability and impact - address the issues below first"
)

var conditionalTokens = []string{"if", "may", "could"}
var actionVerbs = []string{"will", "shall", "must", "implement", "establish", "develop", "monitor"}
var vaguePhrases = []string{"bad thing", "might happen"}
var genericPhrases = []string{"fix it", "be careful", "monitor"}

// Recommendations is the fixed best-practice list attached to every
// analysis. Intentionally not derived per batch so demo output is stable.
func Recommendations() []string {
	return []string{
		"Use a consistent event-condition-consequence format for all risk descriptions",
		"Ensure every risk has a named owner",
		"Make mitigation strategies specific and actionable with concrete steps",
		"Review probability and impact scores for consistency with the described risk",
		"Add cost and timeframe estimates to high-priority mitigations",
	}
}

// Analyze scores a risk batch against the built-in rule set. The
// heuristics argument is accepted for signature parity with the live
// advisor path; it does not vary the offline scoring.
func Analyze(risks []risk.Risk, _ []risk.Heuristic) risk.AnalysisResult {
	scored := make([]risk.Risk, len(risks))
	total := 0
	for i, r := range risks {
		quality, suggestions := scoreRisk(r)
		r.QualityScore = quality
		r.Suggestions = suggestions
		scored[i] = r
		total += quality
	}

	overall := 0
	if len(scored) > 0 {
		overall = int(math.Round(float64(total) / float64(len(scored))))
	}

	return risk.AnalysisResult{
		OverallScore:    overall,
		Risks:           scored,
		Summary:         summarize(len(scored), overall),
		Recommendations: Recommendations(),
	}
}

// scoreRisk starts at 7 and applies signed adjustments, clamping to [1,10].
func scoreRisk(r risk.Risk) (int, []string) {
	score := 7
	var suggestions []string

	desc := strings.TrimSpace(r.Description)
	mit := strings.TrimSpace(r.Mitigation)
	descLower := strings.ToLower(desc)
	mitLower := strings.ToLower(mit)

	if len(desc) < 20 {
		score -= 2
		suggestions = append(suggestions, SuggestionBriefDescription)
	}
	if !containsAnyWord(descLower, conditionalTokens) {
		score--
		suggestions = append(suggestions, SuggestionConditional)
	}
	if containsAnyPhrase(descLower, vaguePhrases) || len(desc) < 30 {
		score--
		suggestions = append(suggestions, SuggestionVagueLanguage)
	}

	switch {
	case len(mit) < 10:
		score -= 3
		suggestions = append(suggestions, SuggestionNoMitigation)
	case len(mit) < 30:
		score -= 2
		suggestions = append(suggestions, SuggestionBriefMitigation)
	}
	if !containsAnyWord(mitLower, actionVerbs) {
		score--
		suggestions = append(suggestions, SuggestionActionVerbs)
	}
	if containsAnyPhrase(mitLower, genericPhrases) {
		score -= 2
		suggestions = append(suggestions, SuggestionGenericPhrasing)
	}

	if strings.TrimSpace(r.Owner) == "" {
		score--
		suggestions = append(suggestions, SuggestionAssignOwner)
	}
	if strings.TrimSpace(r.Category) == "" {
		score--
		suggestions = append(suggestions, SuggestionAssignCategory)
	}

	if r.Probability > 3 && r.Impact > 3 && len(suggestions) > 0 {
		suggestions = append([]string{HighPriorityMarker}, suggestions...)
	}

	if len(desc) > 50 && len(mit) > 40 && strings.TrimSpace(r.Owner) != "" {
		score++
	}

	score = risk.Clamp(score, 1, 10)

	if len(suggestions) == 0 {
		suggestions = append(suggestions, SuggestionWellDefined)
	}
	return score, suggestions
}

func summarize(count, overall int) string {
	var tier string
	switch {
	case overall >= 8:
		tier = "Excellent risk register quality - risks are specific and mitigations are actionable."
	case overall >= 6:
		tier = "Good overall quality - a few risks need sharper descriptions or mitigations."
	default:
		tier = "Several risks need improvement in clarity and actionability."
	}
	return fmt.Sprintf("Analyzed %d risks. Overall quality score: %d/10. %s", count, overall, tier)
}

// containsAnyWord matches whole words, so "if" does not match "shift".
func containsAnyWord(text string, words []string) bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	for _, f := range fields {
		for _, w := range words {
			if f == w {
				return true
			}
		}
	}
	return false
}

func containsAnyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
