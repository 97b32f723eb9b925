// Package register parses uploaded risk registers. Real-world registers
// arrive with wildly inconsistent headers, so column resolution works on
// normalized names matched against ordered alias lists.
package register

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pmtooling/riskpilot/internal/risk"
)

var (
	// ErrEmptyFile is returned when the CSV contains no rows at all.
	ErrEmptyFile = errors.New("CSV file is empty")
	// ErrNoValidRows is returned when every row was dropped (blank descriptions).
	ErrNoValidRows = errors.New("no valid risks found in CSV file")
)

// MissingColumnsError names every required logical field that could not be
// resolved against the header row.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// Alias lists per logical field, in priority order. Matching happens after
// lowercasing and stripping non-alphanumerics, so "Risk_ID" and "risk id"
// both resolve to riskid.
var (
	idAliases          = []string{"riskid", "id", "risk"}
	descAliases        = []string{"description", "riskdescription", "desc"}
	mitigationAliases  = []string{"mitigation", "mitigationplan", "response", "action"}
	probabilityAliases = []string{"probability", "likelihood", "prob"}
	impactAliases      = []string{"impact", "severity", "consequence"}
	categoryAliases    = []string{"category", "type", "riskcategory"}
	ownerAliases       = []string{"owner", "responsible", "assignee"}
)

// Parse reads a risk register CSV and returns normalized risks.
func Parse(r io.Reader) ([]risk.Risk, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers := records[0]
	idCol := findColumn(headers, idAliases)
	descCol := findColumn(headers, descAliases)
	mitigationCol := findColumn(headers, mitigationAliases)
	probabilityCol := findColumn(headers, probabilityAliases)
	impactCol := findColumn(headers, impactAliases)

	var missing []string
	if idCol < 0 {
		missing = append(missing, "Risk ID")
	}
	if descCol < 0 {
		missing = append(missing, "Description")
	}
	if mitigationCol < 0 {
		missing = append(missing, "Mitigation")
	}
	if probabilityCol < 0 {
		missing = append(missing, "Probability/Likelihood")
	}
	if impactCol < 0 {
		missing = append(missing, "Impact/Severity")
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	categoryCol := findColumn(headers, categoryAliases)
	ownerCol := findColumn(headers, ownerAliases)

	if len(records) == 1 {
		return nil, ErrEmptyFile
	}

	var risks []risk.Risk
	for i, row := range records[1:] {
		description := strings.TrimSpace(cell(row, descCol))
		if description == "" {
			continue
		}

		probability := coerceScale(cell(row, probabilityCol))
		impact := coerceScale(cell(row, impactCol))

		id := strings.TrimSpace(cell(row, idCol))
		if id == "" {
			id = fmt.Sprintf("R%d", i+1)
		}

		risks = append(risks, risk.Risk{
			ID:          id,
			Description: description,
			Mitigation:  strings.TrimSpace(cell(row, mitigationCol)),
			Probability: probability,
			Impact:      impact,
			Category:    strings.TrimSpace(cell(row, categoryCol)),
			Owner:       strings.TrimSpace(cell(row, ownerCol)),
			Score:       risk.ScoreOf(probability, impact),
		})
	}

	if len(risks) == 0 {
		return nil, ErrNoValidRows
	}
	return risks, nil
}

// coerceScale converts a raw cell into a 1-5 value. Values above 5 are
// assumed to be on a 0-100 (or 1-10) scale and are rescaled by ceil(v/20).
// Unparsable cells default to 3 (mid-scale).
func coerceScale(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v == 0 {
		return 3
	}
	n := int(v)
	if v > 5 {
		n = int(math.Ceil(v / 20))
	}
	return risk.Clamp(n, 1, 5)
}

// findColumn returns the index of the first header whose normalized form
// matches any alias, in alias-priority order.
func findColumn(headers []string, aliases []string) int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}
	for _, alias := range aliases {
		for i, h := range normalized {
			if h == alias {
				return i
			}
		}
	}
	return -1
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
