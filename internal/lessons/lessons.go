// Package lessons turns long-form assurance documents (gateway reviews,
// NISTA reports, closure reports) into structured lessons learned.
package lessons

import "time"

// Category is the closed set of lesson categories.
type Category string

const (
	CategoryProcurement      Category = "Procurement"
	CategoryGovernance       Category = "Governance"
	CategoryResourcing       Category = "Resourcing"
	CategoryRiskManagement   Category = "Risk Management"
	CategoryDelivery         Category = "Delivery & Execution"
	CategoryStakeholder      Category = "Stakeholder Management"
	CategoryTechnical        Category = "Technical"
	CategoryCommercial       Category = "Commercial"
	CategoryQuality          Category = "Quality"
	CategorySchedule         Category = "Schedule"
	CategoryBudget           Category = "Budget & Finance"
	CategoryCommunication    Category = "Communication"
	CategoryChangeManagement Category = "Change Management"
	CategoryCompliance       Category = "Compliance"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryProcurement,
	CategoryGovernance,
	CategoryResourcing,
	CategoryRiskManagement,
	CategoryDelivery,
	CategoryStakeholder,
	CategoryTechnical,
	CategoryCommercial,
	CategoryQuality,
	CategorySchedule,
	CategoryBudget,
	CategoryCommunication,
	CategoryChangeManagement,
	CategoryCompliance,
}

// Applicability describes how widely a lesson transfers.
type Applicability string

const (
	ApplicabilityUniversal       Applicability = "universal"
	ApplicabilitySectorSpecific  Applicability = "sector_specific"
	ApplicabilityProjectSpecific Applicability = "project_specific"
)

// Document source types.
const (
	SourceGatewayReview   = "gateway_review"
	SourceNISTA           = "nista"
	SourceProjectClosure  = "project_closure"
	SourceAssuranceReport = "assurance_report"
)

// reviewConfidenceThreshold marks lessons below it as needing human review.
const reviewConfidenceThreshold = 7

// Lesson is a structured unit of retrospective knowledge with provenance.
type Lesson struct {
	ID                    string        `json:"id"`
	Title                 string        `json:"title"`
	Description           string        `json:"description"`
	Category              Category      `json:"category"`
	Source                string        `json:"source"`
	SourceType            string        `json:"sourceType"`
	DateIdentified        time.Time     `json:"dateIdentified"`
	Context               string        `json:"context"`
	Observation           string        `json:"observation"`
	Impact                string        `json:"impact"`
	Recommendation        string        `json:"recommendation"`
	ActionableSteps       []string      `json:"actionableSteps"`
	Tags                  []string      `json:"tags"`
	RelatedPhases         []string      `json:"relatedPhases"`
	RelatedRiskCategories []string      `json:"relatedRiskCategories"`
	Applicability         Applicability `json:"applicability"`
	Confidence            int           `json:"confidence"` // 1-10
	NeedsReview           bool          `json:"needsReview"`
	Summary               string        `json:"aiSummary,omitempty"`
}

// ExtractionResult is the output of one document extraction.
type ExtractionResult struct {
	Lessons      []Lesson `json:"lessons"`
	Summary      string   `json:"summary"`
	KeyThemes    []string `json:"keyThemes"`
	DocumentName string   `json:"documentName"`
	DocumentType string   `json:"documentType"`
}

// ValidCategory reports whether c is one of the 14 known categories.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Category-keyed lookup tables used to backfill derived fields on
// extracted lessons.
var relatedPhases = map[Category][]string{
	CategoryProcurement:      {"Project Initiation", "Planning"},
	CategoryGovernance:       {"Project Initiation", "Planning", "Execution"},
	CategoryResourcing:       {"Planning", "Execution"},
	CategoryRiskManagement:   {"Planning", "Execution"},
	CategoryDelivery:         {"Execution"},
	CategoryStakeholder:      {"Project Initiation", "Execution"},
	CategoryTechnical:        {"Planning", "Execution"},
	CategoryCommercial:       {"Project Initiation", "Planning"},
	CategoryQuality:          {"Execution"},
	CategorySchedule:         {"Planning", "Execution"},
	CategoryBudget:           {"Planning", "Execution"},
	CategoryCommunication:    {"Project Initiation", "Planning", "Execution"},
	CategoryChangeManagement: {"Execution"},
	CategoryCompliance:       {"Planning", "Execution"},
}

var relatedRiskCategories = map[Category][]string{
	CategoryProcurement:      {"Supply Chain", "Commercial"},
	CategoryGovernance:       {"Governance", "Schedule"},
	CategoryResourcing:       {"Resource Management"},
	CategoryRiskManagement:   {"Governance", "Schedule"},
	CategoryDelivery:         {"Schedule", "Quality"},
	CategoryStakeholder:      {"Stakeholder", "Communication"},
	CategoryTechnical:        {"Technical", "Quality"},
	CategoryCommercial:       {"Commercial", "Budget"},
	CategoryQuality:          {"Quality", "Technical"},
	CategorySchedule:         {"Schedule"},
	CategoryBudget:           {"Budget", "Commercial"},
	CategoryCommunication:    {"Stakeholder", "Communication"},
	CategoryChangeManagement: {"Schedule", "Stakeholder"},
	CategoryCompliance:       {"Regulatory", "Governance"},
}

var genericPhases = []string{"Planning", "Execution"}
var genericRiskCategories = []string{"Schedule", "Governance"}

// RelatedPhases returns the project phases a category maps to, with a
// generic fallback for anything unrecognized.
func RelatedPhases(c Category) []string {
	if phases, ok := relatedPhases[c]; ok {
		return append([]string(nil), phases...)
	}
	return append([]string(nil), genericPhases...)
}

// RelatedRiskCategories returns the risk categories a lesson category maps
// to, with a generic fallback for anything unrecognized.
func RelatedRiskCategories(c Category) []string {
	if categories, ok := relatedRiskCategories[c]; ok {
		return append([]string(nil), categories...)
	}
	return append([]string(nil), genericRiskCategories...)
}
