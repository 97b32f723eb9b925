package advisor

import (
	"fmt"
	"strings"

	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/risk"
)

const riskAnalysisPrompt = `You are a project risk management expert. Analyze the following risks using the provided SME heuristics and score each risk's quality from 1-10.

HEURISTICS:
%s

RISKS TO ANALYZE:
%s

For each risk, provide:
1. Quality score (1-10)
2. Specific suggestions for improvement
3. Which heuristics were violated (if any)

Also provide:
- Overall quality score (average)
- Summary of analysis
- Top 3-5 recommendations

Return your response as a JSON object with this structure:
{
  "risks": [
    {
      "id": "risk id",
      "qualityScore": number,
      "suggestions": ["suggestion 1", "suggestion 2"]
    }
  ],
  "overallScore": number,
  "summary": "string",
  "recommendations": ["rec 1", "rec 2", "rec 3"]
}`

const wbsPrompt = `You are a project planning expert. Generate a detailed Work Breakdown Structure (WBS) from the following project description.

PROJECT DESCRIPTION:
%s

%sCreate a comprehensive WBS with:
- 3-5 major phases
- 8-15 activities total
- Realistic durations (in days, weeks, or months)
- Dependencies between activities
- Resource requirements
- Milestone identification

Return your response as a JSON array with this structure:
[
  {
    "id": "phase-1",
    "name": "Phase Name",
    "activities": [
      {
        "id": "act-1-1",
        "name": "Activity Name",
        "duration": number,
        "unit": "days" | "weeks" | "months",
        "dependencies": ["act-id-1", "act-id-2"],
        "resources": ["Resource 1", "Resource 2"],
        "milestone": true/false,
        "phase": "phase-1"
      }
    ]
  }
]`

const wbsRisksPrompt = `You are a project risk management expert. Identify the key delivery risks for the project "%s" based on its Work Breakdown Structure.

WORK BREAKDOWN STRUCTURE:
%s

Identify 5-10 risks covering schedule, resources, dependencies, and milestones. Phrase each description as a conditional: "If X occurs, then Y". Every risk needs a concrete mitigation.

Return your response as a JSON array with this structure:
[
  {
    "id": "R1",
    "description": "If X occurs, then Y",
    "mitigation": "Concrete mitigation steps",
    "probability": number (1-5),
    "impact": number (1-5),
    "category": "string",
    "owner": "string"
  }
]`

func formatHeuristics(heuristics []risk.Heuristic) string {
	blocks := make([]string, len(heuristics))
	for i, h := range heuristics {
		blocks[i] = fmt.Sprintf("%s: %s\nRule: %s", h.Name, h.Description, h.Rule)
	}
	return strings.Join(blocks, "\n\n")
}

func formatRisks(risks []risk.Risk) string {
	var b strings.Builder
	for i, r := range risks {
		category := r.Category
		if category == "" {
			category = "N/A"
		}
		owner := r.Owner
		if owner == "" {
			owner = "N/A"
		}
		fmt.Fprintf(&b, "\nRisk %d (id: %s):\n- Description: %s\n- Mitigation: %s\n- Probability: %d/5\n- Impact: %d/5\n- Category: %s\n- Owner: %s\n",
			i+1, r.ID, r.Description, r.Mitigation, r.Probability, r.Impact, category, owner)
	}
	return b.String()
}

func formatPhases(phases []plan.Phase) string {
	var b strings.Builder
	for _, p := range phases {
		fmt.Fprintf(&b, "Phase: %s\n", p.Name)
		for _, a := range p.Activities {
			marker := ""
			if a.Milestone {
				marker = " [milestone]"
			}
			fmt.Fprintf(&b, "- %s (%s %s)%s\n", a.Name, formatNumber(a.Duration), a.Unit, marker)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatNumber(v float64) string {
	if v == float64(int(v)) {
		return fmt.Sprintf("%d", int(v))
	}
	return fmt.Sprintf("%g", v)
}

func templateBlock(template string) string {
	if strings.TrimSpace(template) == "" {
		return ""
	}
	return "Use this template as a guide:\n" + template + "\n\n"
}
