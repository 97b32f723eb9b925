// Package derive synthesizes a starter risk register from a WBS. The
// output is order-deterministic: phase order, then activity order, so the
// same WBS always produces the same register.
package derive

import (
	"fmt"

	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/risk"
)

const (
	// Activities longer than this (in their native unit) get a delay risk.
	longActivityThreshold = 10
	// Phases with more activities than this get a resource risk.
	crowdedPhaseThreshold = 5
)

// Risks walks the WBS and emits phase-level, activity-level, and
// resource-level risks with ids numbered R1, R2, ... across the whole
// output.
func Risks(phases []plan.Phase, projectName string) []risk.Risk {
	var risks []risk.Risk
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("R%d", n)
	}

	for _, phase := range phases {
		risks = append(risks, phaseRisk(next(), phase, projectName))

		for _, a := range phase.Activities {
			if a.Milestone || a.Duration > longActivityThreshold {
				risks = append(risks, activityRisk(next(), phase, a))
			}
		}

		if len(phase.Activities) > crowdedPhaseThreshold {
			risks = append(risks, resourceRisk(next(), phase))
		}
	}
	return risks
}

func phaseRisk(id string, phase plan.Phase, projectName string) risk.Risk {
	project := projectName
	if project == "" {
		project = "the project"
	}
	probability, impact := 3, 4
	return risk.Risk{
		ID:          id,
		Description: fmt.Sprintf("If %s is delayed, then the %s timeline may be impacted", phase.Name, project),
		Mitigation:  fmt.Sprintf("Monitor %s progress against the baseline schedule weekly and escalate slippage early", phase.Name),
		Probability: probability,
		Impact:      impact,
		Category:    phase.Name,
		Owner:       "Project Manager",
		Score:       risk.ScoreOf(probability, impact),
	}
}

func activityRisk(id string, phase plan.Phase, a plan.Activity) risk.Risk {
	probability := int(a.Duration)/5 + 2
	if probability > 5 {
		probability = 5
	}
	impact := 3
	if a.Milestone {
		impact = 4
	}
	return risk.Risk{
		ID:          id,
		Description: fmt.Sprintf("If %s in %s encounters delays or quality issues, then dependent activities and milestones may slip", a.Name, phase.Name),
		Mitigation:  fmt.Sprintf("Secure resources for %s early and establish quality checkpoints at handoffs", a.Name),
		Probability: probability,
		Impact:      impact,
		Category:    phase.Name,
		Score:       risk.ScoreOf(probability, impact),
	}
}

func resourceRisk(id string, phase plan.Phase) risk.Risk {
	probability, impact := 3, 3
	return risk.Risk{
		ID:          id,
		Description: fmt.Sprintf("If resource availability falls short across the %d activities in %s, then parallel work stalls", len(phase.Activities), phase.Name),
		Mitigation:  fmt.Sprintf("Develop a resource plan for %s and establish commitments from resource managers before the phase starts", phase.Name),
		Probability: probability,
		Impact:      impact,
		Category:    "Resource Management",
		Owner:       "Resource Manager",
		Score:       risk.ScoreOf(probability, impact),
	}
}
