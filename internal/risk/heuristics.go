package risk

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Heuristic is a named rule used to judge risk quality. Heuristics shape
// the live-model prompt; the offline scorer uses its own fixed rule set.
type Heuristic struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Rule        string `json:"rule" yaml:"rule"`
	Category    string `json:"category" yaml:"category"` // description | mitigation | scoring | completeness
}

// HeuristicCategories is the closed set of heuristic categories.
var HeuristicCategories = []string{"description", "mitigation", "scoring", "completeness"}

// DefaultHeuristics returns the built-in SME heuristic set.
func DefaultHeuristics() []Heuristic {
	return []Heuristic{
		{
			ID:          "h1",
			Name:        "Description Clarity",
			Description: "Risk descriptions should be specific, measurable, and clearly state the potential negative event",
			Rule:        `Check for vague language like "might", "could", "bad thing". Ensure the description follows "event-condition-consequence" pattern.`,
			Category:    "description",
		},
		{
			ID:          "h2",
			Name:        "Mitigation Actionability",
			Description: "Mitigation strategies should include concrete actions with responsible parties",
			Rule:        `Verify mitigation includes specific verbs, responsible roles, and measurable outcomes. Avoid generic phrases like "monitor" or "be careful".`,
			Category:    "mitigation",
		},
		{
			ID:          "h3",
			Name:        "Scoring Consistency",
			Description: "Probability and impact scores should be consistent with the described risk",
			Rule:        "High probability (4-5) risks should have recent historical precedent. High impact (4-5) should clearly threaten project objectives.",
			Category:    "scoring",
		},
		{
			ID:          "h4",
			Name:        "Completeness Check",
			Description: "All required fields should be populated with meaningful information",
			Rule:        "Ensure category, owner, description, and mitigation are all present and substantive (>10 characters).",
			Category:    "completeness",
		},
		{
			ID:          "h5",
			Name:        "Risk Specificity",
			Description: "Risks should be specific to the project context, not generic statements",
			Rule:        "Avoid boilerplate risks. Each risk should reference specific project components, phases, or stakeholders.",
			Category:    "description",
		},
	}
}

// LoadHeuristics reads additional session heuristics from a YAML file.
// Loaded entries get a "custom-" id prefix so they never collide with the
// built-in set.
func LoadHeuristics(path string) ([]Heuristic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heuristics: %w", err)
	}

	var loaded []Heuristic
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing heuristics: %w", err)
	}

	for i := range loaded {
		if err := validateHeuristic(&loaded[i], i); err != nil {
			return nil, err
		}
	}
	return loaded, nil
}

// NewCustomHeuristic builds a session heuristic with the custom- prefix.
func NewCustomHeuristic(id, name, description, rule, category string) (Heuristic, error) {
	h := Heuristic{ID: id, Name: name, Description: description, Rule: rule, Category: category}
	if err := validateHeuristic(&h, 0); err != nil {
		return Heuristic{}, err
	}
	return h, nil
}

func validateHeuristic(h *Heuristic, idx int) error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("heuristic %d: name is required", idx+1)
	}
	if h.ID == "" {
		h.ID = fmt.Sprintf("custom-%d", idx+1)
	}
	if !strings.HasPrefix(h.ID, "custom-") {
		h.ID = "custom-" + h.ID
	}
	if h.Category == "" {
		h.Category = "description"
	}
	valid := false
	for _, c := range HeuristicCategories {
		if h.Category == c {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("heuristic %q: unknown category %q", h.Name, h.Category)
	}
	return nil
}
