package risk

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSeverityBands(t *testing.T) {
	cases := []struct {
		score int
		want  Severity
	}{
		{1, SeverityLow},
		{5, SeverityLow},
		{6, SeverityMedium},
		{10, SeverityMedium},
		{12, SeverityHigh},
		{15, SeverityHigh},
		{16, SeverityCritical},
		{25, SeverityCritical},
	}
	for _, c := range cases {
		if got := SeverityOf(c.score); got != c.want {
			t.Errorf("SeverityOf(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestDefaultHeuristicsUniqueIDs(t *testing.T) {
	hs := DefaultHeuristics()
	if len(hs) != 5 {
		t.Fatalf("expected 5 default heuristics, got %d", len(hs))
	}
	seen := make(map[string]bool)
	for _, h := range hs {
		if seen[h.ID] {
			t.Errorf("duplicate heuristic id %q", h.ID)
		}
		seen[h.ID] = true
		valid := false
		for _, c := range HeuristicCategories {
			if h.Category == c {
				valid = true
			}
		}
		if !valid {
			t.Errorf("heuristic %s has invalid category %q", h.ID, h.Category)
		}
	}
}

func TestLoadHeuristicsPrefixesCustom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	content := `- id: quant
  name: Quantified Impact
  description: Impacts should be quantified
  rule: Look for cost or schedule figures in the impact statement.
  category: scoring
- name: Unnamed Rule Id
  description: Gets a generated id
  rule: Anything
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	hs, err := LoadHeuristics(path)
	if err != nil {
		t.Fatalf("LoadHeuristics returned error: %v", err)
	}
	if len(hs) != 2 {
		t.Fatalf("expected 2 heuristics, got %d", len(hs))
	}
	if hs[0].ID != "custom-quant" {
		t.Errorf("expected custom-quant, got %q", hs[0].ID)
	}
	if hs[1].ID != "custom-2" {
		t.Errorf("expected generated custom-2, got %q", hs[1].ID)
	}
	if hs[1].Category != "description" {
		t.Errorf("expected default category description, got %q", hs[1].Category)
	}
}

func TestLoadHeuristicsRejectsBadCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := "- name: Bad\n  rule: r\n  category: vibes\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHeuristics(path); err == nil {
		t.Error("expected error for unknown category")
	}
}
