package register

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/risk"
)

// ExportRisks serializes an enriched risk register as RFC-4180 CSV.
func ExportRisks(risks []risk.Risk) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	w.Write([]string{"ID", "Description", "Mitigation", "Probability", "Impact", "Category", "Owner", "Score", "Quality Score", "Suggestions"})
	for _, r := range risks {
		quality := ""
		if r.QualityScore > 0 {
			quality = strconv.Itoa(r.QualityScore)
		}
		w.Write([]string{
			r.ID,
			r.Description,
			r.Mitigation,
			strconv.Itoa(r.Probability),
			strconv.Itoa(r.Impact),
			r.Category,
			r.Owner,
			strconv.Itoa(r.Score),
			quality,
			strings.Join(r.Suggestions, "; "),
		})
	}
	w.Flush()
	return b.String()
}

// ExportWBS serializes a WBS as RFC-4180 CSV, one activity per record.
func ExportWBS(phases []plan.Phase) string {
	var b strings.Builder
	w := csv.NewWriter(&b)

	w.Write([]string{"Phase", "Activity", "Duration", "Unit", "Dependencies", "Resources", "Milestone"})
	for _, phase := range phases {
		for _, a := range phase.Activities {
			milestone := "No"
			if a.Milestone {
				milestone = "Yes"
			}
			w.Write([]string{
				phase.Name,
				a.Name,
				formatDuration(a.Duration),
				string(a.Unit),
				strings.Join(a.Dependencies, "; "),
				strings.Join(a.Resources, "; "),
				milestone,
			})
		}
	}
	w.Flush()
	return b.String()
}

// ParseWBSExport reads an ExportWBS CSV back into phases, grouping
// consecutive records by phase name. Used for export round-trips.
func ParseWBSExport(content string) ([]plan.Phase, error) {
	reader := csv.NewReader(strings.NewReader(content))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading WBS CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyFile
	}

	var phases []plan.Phase
	for _, row := range records[1:] {
		if len(row) < 7 {
			continue
		}
		duration, _ := strconv.ParseFloat(row[2], 64)
		activity := plan.Activity{
			Name:         row[1],
			Duration:     duration,
			Unit:         plan.Unit(row[3]),
			Dependencies: splitList(row[4]),
			Resources:    splitList(row[5]),
			Milestone:    row[6] == "Yes",
		}
		if len(phases) == 0 || phases[len(phases)-1].Name != row[0] {
			phases = append(phases, plan.Phase{Name: row[0]})
		}
		p := &phases[len(phases)-1]
		activity.Phase = p.ID
		p.Activities = append(p.Activities, activity)
	}
	return phases, nil
}

// ExportFilename builds a download filename with the current date, e.g.
// "risk-register-2026-08-28.csv".
func ExportFilename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}

func formatDuration(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "; ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
