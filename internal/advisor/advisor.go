// Package advisor is the adapter between the deterministic engines and a
// live LLM provider. Every operation validates first, then either runs the
// offline engine (demo mode, no provider) or calls the provider and falls
// back to the offline engine when the response cannot be used. Once a call
// starts, failures never surface as errors; they resolve to a fallback
// result tagged with the cause.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pmtooling/riskpilot/internal/derive"
	"github.com/pmtooling/riskpilot/internal/llm"
	"github.com/pmtooling/riskpilot/internal/plan"
	"github.com/pmtooling/riskpilot/internal/risk"
	"github.com/pmtooling/riskpilot/internal/score"
)

var (
	// ErrNoRisks is returned when an empty batch is submitted for analysis.
	ErrNoRisks = errors.New("no risks to analyze")
	// ErrEmptyNarrative is returned when the project narrative is blank.
	ErrEmptyNarrative = errors.New("project narrative is empty")
	// ErrEmptyWBS is returned when risk identification gets no phases.
	ErrEmptyWBS = errors.New("WBS has no phases")
)

// Source tags where a result came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Meta describes how a result was produced. Cause is set on fallback
// results: either the reason no call was made or the error that forced
// the fallback.
type Meta struct {
	Source Source `json:"source"`
	Cause  string `json:"cause,omitempty"`
}

// Config wires an Advisor. A nil Provider means permanent fallback mode.
type Config struct {
	Provider  llm.Provider
	DemoMode  bool
	DemoDelay time.Duration
	Timeout   time.Duration
	MaxTokens int
}

// Advisor runs risk analysis, WBS generation, and WBS risk identification
// against a provider with deterministic fallbacks.
type Advisor struct {
	cfg Config
}

// New creates an Advisor, filling in default timeout and token budget.
func New(cfg Config) *Advisor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Advisor{cfg: cfg}
}

// Live reports whether calls go to the provider rather than the offline
// engines.
func (a *Advisor) Live() bool {
	return !a.cfg.DemoMode && a.cfg.Provider != nil && a.cfg.Provider.IsConfigured()
}

// AnalyzeRisks scores a risk batch. Live results are merged onto the
// submitted risks by id; no submitted risk is ever dropped.
func (a *Advisor) AnalyzeRisks(ctx context.Context, risks []risk.Risk, heuristics []risk.Heuristic) (risk.AnalysisResult, Meta, error) {
	if len(risks) == 0 {
		return risk.AnalysisResult{}, Meta{}, ErrNoRisks
	}

	if !a.Live() {
		if err := a.simulateDelay(ctx); err != nil {
			return risk.AnalysisResult{}, Meta{}, err
		}
		return score.Analyze(risks, heuristics), Meta{Source: SourceFallback, Cause: a.offlineCause()}, nil
	}

	result, err := a.analyzeLive(ctx, risks, heuristics)
	if err != nil {
		log.Printf("Risk analysis fell back to offline scoring: %v", err)
		return score.Analyze(risks, heuristics), Meta{Source: SourceFallback, Cause: err.Error()}, nil
	}
	return result, Meta{Source: SourceLive}, nil
}

// GenerateWBS builds a phase breakdown from a project narrative. The
// optional template text is passed through to the prompt as guidance.
func (a *Advisor) GenerateWBS(ctx context.Context, narrative, template string) ([]plan.Phase, Meta, error) {
	if strings.TrimSpace(narrative) == "" {
		return nil, Meta{}, ErrEmptyNarrative
	}

	if !a.Live() {
		if err := a.simulateDelay(ctx); err != nil {
			return nil, Meta{}, err
		}
		return plan.Synthesize(narrative), Meta{Source: SourceFallback, Cause: a.offlineCause()}, nil
	}

	phases, err := a.generateWBSLive(ctx, narrative, template)
	if err != nil {
		log.Printf("WBS generation fell back to templates: %v", err)
		return plan.Synthesize(narrative), Meta{Source: SourceFallback, Cause: err.Error()}, nil
	}
	return phases, Meta{Source: SourceLive}, nil
}

// IdentifyRisksFromWBS proposes a starter risk register for a WBS.
func (a *Advisor) IdentifyRisksFromWBS(ctx context.Context, phases []plan.Phase, projectName string) ([]risk.Risk, Meta, error) {
	if len(phases) == 0 {
		return nil, Meta{}, ErrEmptyWBS
	}

	if !a.Live() {
		if err := a.simulateDelay(ctx); err != nil {
			return nil, Meta{}, err
		}
		return derive.Risks(phases, projectName), Meta{Source: SourceFallback, Cause: a.offlineCause()}, nil
	}

	risks, err := a.identifyRisksLive(ctx, phases, projectName)
	if err != nil {
		log.Printf("WBS risk identification fell back to derivation rules: %v", err)
		return derive.Risks(phases, projectName), Meta{Source: SourceFallback, Cause: err.Error()}, nil
	}
	return risks, Meta{Source: SourceLive}, nil
}

func (a *Advisor) analyzeLive(ctx context.Context, risks []risk.Risk, heuristics []risk.Heuristic) (risk.AnalysisResult, error) {
	prompt := fmt.Sprintf(riskAnalysisPrompt, formatHeuristics(heuristics), formatRisks(risks))

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return risk.AnalysisResult{}, err
	}

	raw, ok := llm.ExtractJSONObject(text)
	if !ok {
		return risk.AnalysisResult{}, errors.New("no JSON object in response")
	}

	var parsed struct {
		Risks []struct {
			ID           string   `json:"id"`
			QualityScore int      `json:"qualityScore"`
			Suggestions  []string `json:"suggestions"`
		} `json:"risks"`
		OverallScore    int      `json:"overallScore"`
		Summary         string   `json:"summary"`
		Recommendations []string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return risk.AnalysisResult{}, fmt.Errorf("parsing analysis response: %w", err)
	}

	byID := make(map[string]int, len(parsed.Risks))
	for i, r := range parsed.Risks {
		byID[r.ID] = i
	}

	merged := make([]risk.Risk, len(risks))
	for i, r := range risks {
		if j, ok := byID[r.ID]; ok {
			r.QualityScore = risk.Clamp(parsed.Risks[j].QualityScore, 1, 10)
			r.Suggestions = parsed.Risks[j].Suggestions
			if r.Suggestions == nil {
				r.Suggestions = []string{}
			}
		} else {
			r.QualityScore = 5
			r.Suggestions = []string{}
		}
		merged[i] = r
	}

	overall := parsed.OverallScore
	if overall == 0 {
		overall = 5
	}
	summary := parsed.Summary
	if summary == "" {
		summary = "Analysis complete"
	}
	recommendations := parsed.Recommendations
	if recommendations == nil {
		recommendations = []string{}
	}

	return risk.AnalysisResult{
		OverallScore:    risk.Clamp(overall, 1, 10),
		Risks:           merged,
		Summary:         summary,
		Recommendations: recommendations,
	}, nil
}

func (a *Advisor) generateWBSLive(ctx context.Context, narrative, template string) ([]plan.Phase, error) {
	prompt := fmt.Sprintf(wbsPrompt, narrative, templateBlock(template))

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, ok := llm.ExtractJSONArray(text)
	if !ok {
		return nil, errors.New("no JSON array in response")
	}

	var phases []plan.Phase
	if err := json.Unmarshal([]byte(raw), &phases); err != nil {
		return nil, fmt.Errorf("parsing WBS response: %w", err)
	}
	if len(phases) == 0 {
		return nil, errors.New("WBS response contained no phases")
	}

	for i := range phases {
		if phases[i].ID == "" {
			phases[i].ID = fmt.Sprintf("phase-%d", i+1)
		}
		for j := range phases[i].Activities {
			act := &phases[i].Activities[j]
			if act.ID == "" {
				act.ID = fmt.Sprintf("act-%d-%d", i+1, j+1)
			}
			if act.Phase == "" {
				act.Phase = phases[i].ID
			}
			switch act.Unit {
			case plan.UnitDays, plan.UnitWeeks, plan.UnitMonths:
			default:
				act.Unit = plan.UnitDays
			}
			if act.Duration <= 0 {
				act.Duration = 1
			}
		}
	}
	return phases, nil
}

func (a *Advisor) identifyRisksLive(ctx context.Context, phases []plan.Phase, projectName string) ([]risk.Risk, error) {
	project := projectName
	if project == "" {
		project = "the project"
	}
	prompt := fmt.Sprintf(wbsRisksPrompt, project, formatPhases(phases))

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw, ok := llm.ExtractJSONArray(text)
	if !ok {
		return nil, errors.New("no JSON array in response")
	}

	var risks []risk.Risk
	if err := json.Unmarshal([]byte(raw), &risks); err != nil {
		return nil, fmt.Errorf("parsing risk response: %w", err)
	}
	if len(risks) == 0 {
		return nil, errors.New("risk response contained no risks")
	}

	for i := range risks {
		r := &risks[i]
		if r.ID == "" {
			r.ID = fmt.Sprintf("R%d", i+1)
		}
		r.Probability = risk.Clamp(r.Probability, 1, 5)
		r.Impact = risk.Clamp(r.Impact, 1, 5)
		r.Score = risk.ScoreOf(r.Probability, r.Impact)
	}
	return risks, nil
}

func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()
	return a.cfg.Provider.Generate(ctx, prompt, a.cfg.MaxTokens)
}

// simulateDelay keeps the offline path's pacing close to a real call so
// the UI behaves the same in both modes.
func (a *Advisor) simulateDelay(ctx context.Context) error {
	if a.cfg.DemoDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(a.cfg.DemoDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Advisor) offlineCause() string {
	if a.cfg.DemoMode {
		return "demo mode"
	}
	return "no provider configured"
}
