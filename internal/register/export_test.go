package register

import (
	"strings"
	"testing"
	"time"

	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/risk"
)

func TestExportRisksQuotesSpecialCharacters(t *testing.T) {
	risks := []risk.Risk{
		{
			ID:          "R1",
			Description: `Vendor says "maybe", which blocks planning`,
			Mitigation:  "Escalate, then re-plan",
			Probability: 3,
			Impact:      4,
			Score:       12,
			QualityScore: 6,
			Suggestions: []string{"Assign a risk owner for accountability"},
		},
	}

	out := ExportRisks(risks)
	if !strings.HasPrefix(out, "ID,Description,Mitigation") {
		t.Errorf("unexpected header: %s", out)
	}
	if !strings.Contains(out, `"Vendor says ""maybe"", which blocks planning"`) {
		t.Errorf("embedded quotes/commas not escaped: %s", out)
	}

	// A quoted field must survive a CSV re-read.
	parsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-parsing export failed: %v", err)
	}
	if parsed[0].Description != risks[0].Description {
		t.Errorf("description did not round-trip: %q", parsed[0].Description)
	}
}

func TestExportRisksOmitsZeroQuality(t *testing.T) {
	out := ExportRisks([]risk.Risk{{ID: "R1", Description: "d", Mitigation: "m", Probability: 1, Impact: 1, Score: 1}})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], ",1,,") {
		t.Errorf("unscored risk should have an empty quality column: %s", lines[1])
	}
}

func TestExportWBSRoundTrip(t *testing.T) {
	phases := plan.Template(plan.ClassSoftware)
	out := ExportWBS(phases)

	back, err := ParseWBSExport(out)
	if err != nil {
		t.Fatalf("ParseWBSExport failed: %v", err)
	}
	if len(back) != len(phases) {
		t.Fatalf("phase count changed: %d -> %d", len(phases), len(back))
	}
	for i := range phases {
		if back[i].Name != phases[i].Name {
			t.Errorf("phase %d name %q, want %q", i, back[i].Name, phases[i].Name)
		}
		if len(back[i].Activities) != len(phases[i].Activities) {
			t.Fatalf("phase %q activity count changed", phases[i].Name)
		}
		for j, a := range phases[i].Activities {
			got := back[i].Activities[j]
			if got.Name != a.Name || got.Duration != a.Duration || got.Unit != a.Unit || got.Milestone != a.Milestone {
				t.Errorf("activity %q did not round-trip: %+v", a.Name, got)
			}
		}
	}
}

func TestParseWBSExportEmpty(t *testing.T) {
	if _, err := ParseWBSExport("Phase,Activity,Duration,Unit,Dependencies,Resources,Milestone\n"); err == nil {
		t.Error("expected error for header-only WBS CSV")
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	if got := ExportFilename("risk-register", now); got != "risk-register-2026-08-28.csv" {
		t.Errorf("ExportFilename = %q", got)
	}
	if got := ExportFilename("wbs", now); got != "wbs-2026-08-28.csv" {
		t.Errorf("ExportFilename = %q", got)
	}
}
