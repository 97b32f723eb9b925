package risk

// Risk is one row of a risk register.
type Risk struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Mitigation  string `json:"mitigation"`
	Probability int    `json:"probability"` // 1-5
	Impact      int    `json:"impact"`      // 1-5
	Category    string `json:"category,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Score       int    `json:"score"` // probability * impact

	// Set by analysis.
	QualityScore int      `json:"qualityScore,omitempty"` // 1-10
	Suggestions  []string `json:"suggestions,omitempty"`
}

// AnalysisResult is the output of a quality pass over a risk batch.
type AnalysisResult struct {
	OverallScore    int      `json:"overallScore"` // 1-10
	Risks           []Risk   `json:"risks"`
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// Severity bands a risk score (probability x impact).
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ScoreOf computes the risk score from clamped probability and impact.
func ScoreOf(probability, impact int) int {
	return probability * impact
}

// SeverityOf bands a score into low/medium/high/critical.
func SeverityOf(score int) Severity {
	switch {
	case score <= 5:
		return SeverityLow
	case score <= 10:
		return SeverityMedium
	case score <= 15:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// Clamp constrains v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
