// Package plan models work breakdown structures and synthesizes them from
// free-text project narratives.
package plan

// Unit is the time unit of an activity duration.
type Unit string

const (
	UnitDays   Unit = "days"
	UnitWeeks  Unit = "weeks"
	UnitMonths Unit = "months"
)

// Activity is an atomic unit of work within a phase.
type Activity struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Duration     float64  `json:"duration"`
	Unit         Unit     `json:"unit"`
	Dependencies []string `json:"dependencies"`
	Resources    []string `json:"resources,omitempty"`
	Milestone    bool     `json:"milestone"`
	Phase        string   `json:"phase"`
}

// Phase is an ordered container of activities.
type Phase struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
}

// ActivityCount sums activities across phases.
func ActivityCount(phases []Phase) int {
	n := 0
	for _, p := range phases {
		n += len(p.Activities)
	}
	return n
}

// PhaseDurationDays sums activity durations in working days (weeks x5,
// months x20). A simple sum, not a critical-path estimate.
func PhaseDurationDays(activities []Activity) float64 {
	var days float64
	for _, a := range activities {
		switch a.Unit {
		case UnitWeeks:
			days += a.Duration * 5
		case UnitMonths:
			days += a.Duration * 20
		default:
			days += a.Duration
		}
	}
	return days
}

// Validate checks structural invariants: unique phase ids, positive
// durations, and dependencies that only reference known activity ids.
func Validate(phases []Phase) []string {
	var problems []string
	phaseIDs := make(map[string]bool)
	activityIDs := make(map[string]bool)

	for _, p := range phases {
		if phaseIDs[p.ID] {
			problems = append(problems, "duplicate phase id "+p.ID)
		}
		phaseIDs[p.ID] = true
		for _, a := range p.Activities {
			activityIDs[a.ID] = true
		}
	}

	for _, p := range phases {
		for _, a := range p.Activities {
			if a.Duration <= 0 {
				problems = append(problems, "activity "+a.ID+" has non-positive duration")
			}
			for _, dep := range a.Dependencies {
				if !activityIDs[dep] {
					problems = append(problems, "activity "+a.ID+" depends on unknown id "+dep)
				}
			}
		}
	}
	return problems
}
