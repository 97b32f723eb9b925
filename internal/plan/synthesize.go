package plan

import "strings"

// ProjectClass is the coarse project type detected from a narrative.
type ProjectClass string

const (
	ClassConstruction ProjectClass = "construction"
	ClassResearch     ProjectClass = "research"
	ClassSoftware     ProjectClass = "software"
)

var (
	constructionKeywords = []string{"build", "construct", "foundation", "building"}
	researchKeywords     = []string{"research", "study", "analysis", "experiment"}
)

// Classify detects the project type by keyword matching. Total: any input,
// including the empty string, classifies (software is the default).
func Classify(narrative string) ProjectClass {
	lower := strings.ToLower(narrative)
	for _, kw := range constructionKeywords {
		if strings.Contains(lower, kw) {
			return ClassConstruction
		}
	}
	for _, kw := range researchKeywords {
		if strings.Contains(lower, kw) {
			return ClassResearch
		}
	}
	return ClassSoftware
}

// Synthesize returns the fixed WBS template for the narrative's project
// class. Deliberately not generative: the offline path must be a
// deterministic lookup so exports and fixtures are reproducible.
func Synthesize(narrative string) []Phase {
	switch Classify(narrative) {
	case ClassConstruction:
		return Template(ClassConstruction)
	case ClassResearch:
		return Template(ClassResearch)
	default:
		return Template(ClassSoftware)
	}
}

// Template returns a deep copy of the hand-authored template for a class,
// so callers can annotate activities without corrupting the originals.
func Template(class ProjectClass) []Phase {
	var src []Phase
	switch class {
	case ClassConstruction:
		src = constructionTemplate
	case ClassResearch:
		src = researchTemplate
	default:
		src = softwareTemplate
	}

	out := make([]Phase, len(src))
	for i, p := range src {
		cp := p
		cp.Activities = make([]Activity, len(p.Activities))
		for j, a := range p.Activities {
			ac := a
			ac.Dependencies = append([]string(nil), a.Dependencies...)
			ac.Resources = append([]string(nil), a.Resources...)
			cp.Activities[j] = ac
		}
		out[i] = cp
	}
	return out
}

// softwareTemplate is the default: a generic delivery lifecycle.
var softwareTemplate = []Phase{
	{
		ID:   "phase-1",
		Name: "Project Initiation",
		Activities: []Activity{
			{ID: "act-1-1", Name: "Project Charter Development", Duration: 2, Unit: UnitWeeks, Dependencies: []string{}, Resources: []string{"Project Manager", "Sponsor"}, Milestone: true, Phase: "phase-1"},
			{ID: "act-1-2", Name: "Stakeholder Identification", Duration: 1, Unit: UnitWeeks, Dependencies: []string{"act-1-1"}, Resources: []string{"Project Manager"}, Phase: "phase-1"},
			{ID: "act-1-3", Name: "Initial Risk Assessment", Duration: 1, Unit: UnitWeeks, Dependencies: []string{"act-1-2"}, Resources: []string{"Risk Manager", "Project Manager"}, Phase: "phase-1"},
		},
	},
	{
		ID:   "phase-2",
		Name: "Planning",
		Activities: []Activity{
			{ID: "act-2-1", Name: "Requirements Gathering", Duration: 3, Unit: UnitWeeks, Dependencies: []string{"act-1-3"}, Resources: []string{"Business Analyst", "SMEs"}, Phase: "phase-2"},
			{ID: "act-2-2", Name: "Solution Design", Duration: 4, Unit: UnitWeeks, Dependencies: []string{"act-2-1"}, Resources: []string{"Architect", "Tech Lead"}, Milestone: true, Phase: "phase-2"},
			{ID: "act-2-3", Name: "Resource Planning", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-2-1"}, Resources: []string{"Project Manager", "Resource Manager"}, Phase: "phase-2"},
			{ID: "act-2-4", Name: "Procurement Planning", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-2-2"}, Resources: []string{"Procurement Lead"}, Phase: "phase-2"},
		},
	},
	{
		ID:   "phase-3",
		Name: "Execution",
		Activities: []Activity{
			{ID: "act-3-1", Name: "Development Sprint 1", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-2-2", "act-2-3"}, Resources: []string{"Dev Team"}, Phase: "phase-3"},
			{ID: "act-3-2", Name: "Development Sprint 2", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-3-1"}, Resources: []string{"Dev Team"}, Phase: "phase-3"},
			{ID: "act-3-3", Name: "Integration Testing", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-3-2"}, Resources: []string{"QA Team", "Dev Team"}, Milestone: true, Phase: "phase-3"},
			{ID: "act-3-4", Name: "User Acceptance Testing", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-3-3"}, Resources: []string{"QA Team", "End Users"}, Milestone: true, Phase: "phase-3"},
		},
	},
}

var constructionTemplate = []Phase{
	{
		ID:   "phase-1",
		Name: "Site Preparation",
		Activities: []Activity{
			{ID: "act-1-1", Name: "Site Survey and Investigation", Duration: 2, Unit: UnitWeeks, Dependencies: []string{}, Resources: []string{"Surveyor", "Geotechnical Engineer"}, Phase: "phase-1"},
			{ID: "act-1-2", Name: "Permits and Approvals", Duration: 6, Unit: UnitWeeks, Dependencies: []string{"act-1-1"}, Resources: []string{"Project Manager", "Legal Counsel"}, Milestone: true, Phase: "phase-1"},
			{ID: "act-1-3", Name: "Site Clearing and Grading", Duration: 3, Unit: UnitWeeks, Dependencies: []string{"act-1-2"}, Resources: []string{"Earthworks Crew"}, Phase: "phase-1"},
		},
	},
	{
		ID:   "phase-2",
		Name: "Foundation and Structural Construction",
		Activities: []Activity{
			{ID: "act-2-1", Name: "Excavation and Foundation Pour", Duration: 4, Unit: UnitWeeks, Dependencies: []string{"act-1-3"}, Resources: []string{"Foundation Crew", "Structural Engineer"}, Milestone: true, Phase: "phase-2"},
			{ID: "act-2-2", Name: "Structural Framing", Duration: 8, Unit: UnitWeeks, Dependencies: []string{"act-2-1"}, Resources: []string{"Framing Crew", "Crane Operator"}, Phase: "phase-2"},
			{ID: "act-2-3", Name: "Roofing and Building Envelope", Duration: 4, Unit: UnitWeeks, Dependencies: []string{"act-2-2"}, Resources: []string{"Roofing Crew"}, Phase: "phase-2"},
			{ID: "act-2-4", Name: "MEP Rough-In", Duration: 6, Unit: UnitWeeks, Dependencies: []string{"act-2-2"}, Resources: []string{"Mechanical Contractor", "Electrical Contractor", "Plumbing Contractor"}, Phase: "phase-2"},
		},
	},
	{
		ID:   "phase-3",
		Name: "Finishing and Handover",
		Activities: []Activity{
			{ID: "act-3-1", Name: "Interior Finishing", Duration: 6, Unit: UnitWeeks, Dependencies: []string{"act-2-3", "act-2-4"}, Resources: []string{"Finishing Crew"}, Phase: "phase-3"},
			{ID: "act-3-2", Name: "MEP Commissioning", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-3-1"}, Resources: []string{"Commissioning Agent"}, Milestone: true, Phase: "phase-3"},
			{ID: "act-3-3", Name: "Final Inspections and Certification", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-3-2"}, Resources: []string{"Building Inspector", "Project Manager"}, Phase: "phase-3"},
			{ID: "act-3-4", Name: "Handover and Occupancy", Duration: 1, Unit: UnitWeeks, Dependencies: []string{"act-3-3"}, Resources: []string{"Project Manager", "Facilities Team"}, Milestone: true, Phase: "phase-3"},
		},
	},
}

var researchTemplate = []Phase{
	{
		ID:   "phase-1",
		Name: "Study Design",
		Activities: []Activity{
			{ID: "act-1-1", Name: "Literature Review", Duration: 4, Unit: UnitWeeks, Dependencies: []string{}, Resources: []string{"Lead Researcher", "Research Assistant"}, Phase: "phase-1"},
			{ID: "act-1-2", Name: "Research Protocol Design", Duration: 3, Unit: UnitWeeks, Dependencies: []string{"act-1-1"}, Resources: []string{"Lead Researcher", "Methodologist"}, Milestone: true, Phase: "phase-1"},
			{ID: "act-1-3", Name: "Ethics Approval", Duration: 4, Unit: UnitWeeks, Dependencies: []string{"act-1-2"}, Resources: []string{"Lead Researcher"}, Phase: "phase-1"},
		},
	},
	{
		ID:   "phase-2",
		Name: "Data Collection and Analysis",
		Activities: []Activity{
			{ID: "act-2-1", Name: "Survey Instrument Development", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-1-2"}, Resources: []string{"Research Assistant"}, Phase: "phase-2"},
			{ID: "act-2-2", Name: "Data Collection", Duration: 8, Unit: UnitWeeks, Dependencies: []string{"act-1-3", "act-2-1"}, Resources: []string{"Research Assistant", "Field Team"}, Phase: "phase-2"},
			{ID: "act-2-3", Name: "Case Study Interviews", Duration: 6, Unit: UnitWeeks, Dependencies: []string{"act-2-1"}, Resources: []string{"Lead Researcher"}, Phase: "phase-2"},
			{ID: "act-2-4", Name: "Statistical Analysis", Duration: 4, Unit: UnitWeeks, Dependencies: []string{"act-2-2"}, Resources: []string{"Statistician"}, Milestone: true, Phase: "phase-2"},
		},
	},
	{
		ID:   "phase-3",
		Name: "Publication and Dissemination",
		Activities: []Activity{
			{ID: "act-3-1", Name: "Draft Manuscript", Duration: 4, Unit: UnitWeeks, Dependencies: []string{"act-2-4"}, Resources: []string{"Lead Researcher"}, Phase: "phase-3"},
			{ID: "act-3-2", Name: "Peer Review and Revision", Duration: 8, Unit: UnitWeeks, Dependencies: []string{"act-3-1"}, Resources: []string{"Lead Researcher"}, Phase: "phase-3"},
			{ID: "act-3-3", Name: "Publication and Conference Presentation", Duration: 2, Unit: UnitWeeks, Dependencies: []string{"act-3-2"}, Resources: []string{"Lead Researcher"}, Milestone: true, Phase: "phase-3"},
		},
	},
}
