package lessons

import "time"

// demoLessons is the fixed illustrative set returned in demo mode. It
// spans several categories and includes one low-confidence lesson so the
// review flag is exercised end to end.
func demoLessons(source, sourceType string, now time.Time) []Lesson {
	lessons := []Lesson{
		{
			ID:             "lesson-demo-1",
			Title:          "Establish governance structures before delivery starts",
			Description:    "Projects that set up clear governance from day 1 make decisions substantially faster.",
			Category:       CategoryGovernance,
			Context:        "Programme board was not constituted until three months after mobilisation.",
			Observation:    "Decisions on scope changes queued for weeks because no forum had the authority to approve them.",
			Impact:         "Decision-making delays of 40-60% against comparable projects, and two missed gate reviews.",
			Recommendation: "Constitute the programme board, terms of reference, and escalation routes before mobilisation completes.",
			ActionableSteps: []string{
				"Agree board membership and delegation limits during initiation",
				"Publish an escalation route with named deputies",
				"Hold the first board within two weeks of mobilisation",
			},
			Tags:          []string{"governance", "decision-making", "mobilisation"},
			Applicability: ApplicabilityUniversal,
			Confidence:    9,
		},
		{
			ID:             "lesson-demo-2",
			Title:          "Engage suppliers at least nine months ahead of need",
			Description:    "Early supplier engagement sharply reduces procurement-driven delays.",
			Category:       CategoryProcurement,
			Context:        "A single-source procurement was started four months before the dependent milestone.",
			Observation:    "Contract award slipped past the milestone; projects engaging suppliers 9+ months in advance saw 70% fewer delays.",
			Impact:         "Critical path slipped by eleven weeks waiting on contract signature.",
			Recommendation: "Build procurement lead times into the plan and open market engagement as soon as the need is known.",
			ActionableSteps: []string{
				"Map every external dependency to a procurement route during planning",
				"Start market engagement at least nine months before the dependent activity",
				"Track procurement milestones on the project schedule, not a side list",
			},
			Tags:          []string{"procurement", "suppliers", "lead-time"},
			Applicability: ApplicabilityUniversal,
			Confidence:    9,
		},
		{
			ID:             "lesson-demo-3",
			Title:          "Review the risk register monthly",
			Description:    "Static risk registers are one of the top causes of project failure.",
			Category:       CategoryRiskManagement,
			Context:        "The register was populated at initiation and not revisited until the mid-stage review.",
			Observation:    "Half the open risks had already materialised as issues; mitigations were never started.",
			Impact:         "Rework and firefighting consumed the contingency budget in the first two stages.",
			Recommendation: "Run a monthly risk review with owners present and retire or escalate every risk explicitly.",
			ActionableSteps: []string{
				"Schedule a recurring monthly risk review",
				"Require every risk to have a named owner and a next action",
				"Report movement (new, escalated, retired) to the board each cycle",
			},
			Tags:          []string{"risk", "reviews", "registers"},
			Applicability: ApplicabilityUniversal,
			Confidence:    8,
		},
		{
			ID:             "lesson-demo-4",
			Title:          "Hold 20% contingency on shared resources",
			Description:    "Shared specialists are over-committed by default; plan for it.",
			Category:       CategoryResourcing,
			Context:        "Three workstreams depended on the same data engineering team with no buffer.",
			Observation:    "Every slip in one workstream cascaded into the others through the shared team.",
			Impact:         "Two workstreams stalled for a combined nine weeks waiting on shared resources.",
			Recommendation: "Build 20% contingency into shared-resource plans and secure written commitments from resource managers.",
			ActionableSteps: []string{
				"Identify shared resources during planning and flag them on the WBS",
				"Secure written commitments covering peak demand periods",
				"Review shared-resource load alongside the monthly risk review",
			},
			Tags:          []string{"resources", "capacity", "contingency"},
			Applicability: ApplicabilityUniversal,
			Confidence:    8,
		},
		{
			ID:             "lesson-demo-5",
			Title:          "Keep users engaged through the whole lifecycle",
			Description:    "Continuous user engagement prevents costly late redesigns.",
			Category:       CategoryStakeholder,
			Context:        "User representatives were consulted at requirements and then not again until acceptance.",
			Observation:    "Acceptance testing surfaced workflow mismatches that requirements sign-off had missed.",
			Impact:         "A redesign cycle late in delivery cost eight weeks and strained stakeholder trust.",
			Recommendation: "Schedule user checkpoints in every phase, not just at the ends.",
			ActionableSteps: []string{
				"Name user representatives with time formally allocated",
				"Demonstrate working increments at least monthly",
				"Track user-raised concerns to closure in the issue log",
			},
			Tags:          []string{"users", "engagement", "acceptance"},
			Applicability: ApplicabilityUniversal,
			Confidence:    7,
		},
		{
			ID:             "lesson-demo-6",
			Title:          "Reporting lines blurred between programme and project",
			Description:    "Status reporting duplicated effort and hid a slipping milestone.",
			Category:       CategoryCommunication,
			Context:        "Programme and project offices both produced status reports from different data.",
			Observation:    "The two reports disagreed on milestone status for six weeks before anyone reconciled them.",
			Impact:         "A milestone slip went unescalated until it hit the critical path.",
			Recommendation: "Agree a single source of status truth and one reporting line per audience.",
			ActionableSteps: []string{
				"Consolidate status reporting into one dataset",
				"Define which audience each report serves",
			},
			Tags:          []string{"reporting", "status", "escalation"},
			Applicability: ApplicabilityProjectSpecific,
			Confidence:    6,
		},
	}

	for i := range lessons {
		l := &lessons[i]
		l.Source = source
		l.SourceType = sourceType
		l.DateIdentified = now
		l.RelatedPhases = RelatedPhases(l.Category)
		l.RelatedRiskCategories = RelatedRiskCategories(l.Category)
		l.NeedsReview = l.Confidence < reviewConfidenceThreshold
	}
	return lessons
}

const demoSummary = "The document surfaces recurring delivery weaknesses in governance, procurement lead times, risk review cadence, shared-resource planning, and user engagement, alongside a reporting gap between programme and project offices."

func demoKeyThemes() []string {
	return []string{
		"Early governance and supplier engagement",
		"Living risk management",
		"Shared-resource contention",
		"Continuous stakeholder involvement",
	}
}
