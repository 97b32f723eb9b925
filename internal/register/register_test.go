package register

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
)

func TestParseFlexibleHeaders(t *testing.T) {
	csv := `Risk_ID,Desc,Mitigation Plan,Likelihood,Severity,Type,Responsible
R-001,Vendor delivery slips,Qualify a second vendor,4,5,Supply Chain,Alice
R-002,Key staff attrition,Cross-train the team,2,3,Resources,Bob
`
	risks, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(risks) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(risks))
	}

	r := risks[0]
	if r.ID != "R-001" || r.Description != "Vendor delivery slips" || r.Mitigation != "Qualify a second vendor" {
		t.Errorf("text fields not resolved: %+v", r)
	}
	if r.Probability != 4 || r.Impact != 5 || r.Score != 20 {
		t.Errorf("numeric fields wrong: %+v", r)
	}
	if r.Category != "Supply Chain" || r.Owner != "Alice" {
		t.Errorf("optional fields wrong: %+v", r)
	}
}

func TestParsePercentageScaleRescaled(t *testing.T) {
	csv := "Risk_ID,Desc,Mitigation,Probability(%),Impact\nR1,Outage risk,Add redundancy,80,3\nR2,Data loss,Backups,15,2\nR3,Slow rollout,Training,100,1\n"
	risks, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	// ceil(80/20)=4, ceil(15/20)=1, ceil(100/20)=5
	want := []int{4, 1, 5}
	for i, r := range risks {
		if r.Probability != want[i] {
			t.Errorf("risk %s: probability %d, want %d", r.ID, r.Probability, want[i])
		}
	}
}

func TestParseClampsAnyInteger(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		v := rng.Intn(1001)
		csv := fmt.Sprintf("ID,Description,Mitigation,Probability,Impact\nR1,Some risk event,Mitigate somehow,%d,%d\n", v, v)
		risks, err := Parse(strings.NewReader(csv))
		if err != nil {
			t.Fatalf("Parse(%d) error: %v", v, err)
		}
		r := risks[0]
		if r.Probability < 1 || r.Probability > 5 || r.Impact < 1 || r.Impact > 5 {
			t.Fatalf("value %d not clamped into [1,5]: p=%d i=%d", v, r.Probability, r.Impact)
		}
		if r.Score != r.Probability*r.Impact {
			t.Fatalf("score %d is not probability x impact", r.Score)
		}
	}
}

func TestParseUnparsableDefaultsToThree(t *testing.T) {
	csv := "ID,Description,Mitigation,Probability,Impact\nR1,Some risk,Do things,high,\n"
	risks, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if risks[0].Probability != 3 || risks[0].Impact != 3 {
		t.Errorf("unparsable values should default to 3: %+v", risks[0])
	}
}

func TestParseMissingColumns(t *testing.T) {
	csv := "Name,Notes\nfoo,bar\n"
	_, err := Parse(strings.NewReader(csv))

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Missing) != 5 {
		t.Errorf("expected all 5 required fields reported, got %v", missing.Missing)
	}
	if !strings.Contains(err.Error(), "Probability/Likelihood") {
		t.Errorf("error should name the missing columns: %v", err)
	}
}

func TestParseEmptyFile(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
	// Header only also counts as empty.
	if _, err := Parse(strings.NewReader("ID,Description,Mitigation,Probability,Impact\n")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile for header-only input, got %v", err)
	}
}

func TestParseDropsBlankDescriptions(t *testing.T) {
	csv := "ID,Description,Mitigation,Probability,Impact\nR1,   ,m,3,3\nR2,Real risk,m,3,3\n"
	risks, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(risks) != 1 || risks[0].ID != "R2" {
		t.Errorf("expected only R2 to survive, got %+v", risks)
	}
}

func TestParseNoValidRows(t *testing.T) {
	csv := "ID,Description,Mitigation,Probability,Impact\nR1,,m,3,3\nR2,  ,m,3,3\n"
	if _, err := Parse(strings.NewReader(csv)); !errors.Is(err, ErrNoValidRows) {
		t.Errorf("expected ErrNoValidRows, got %v", err)
	}
}

func TestParseAssignsPlaceholderIDs(t *testing.T) {
	csv := "ID,Description,Mitigation,Probability,Impact\n,First risk,m,3,3\n,Second risk,m,3,3\n"
	risks, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if risks[0].ID != "R1" || risks[1].ID != "R2" {
		t.Errorf("expected placeholder ids R1, R2: got %s, %s", risks[0].ID, risks[1].ID)
	}
}

func TestParseKeepsDuplicateIDs(t *testing.T) {
	csv := "ID,Description,Mitigation,Probability,Impact\nR1,First,m,3,3\nR1,Second,m,3,3\n"
	risks, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(risks) != 2 {
		t.Errorf("duplicate ids must not be deduplicated: got %d risks", len(risks))
	}
}
