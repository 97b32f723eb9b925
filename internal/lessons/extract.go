package lessons

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pmtooling/riskpilot/internal/advisor"
	"github.com/pmtooling/riskpilot/internal/llm"
	"github.com/pmtooling/riskpilot/internal/risk"
)

// ErrEmptyDocument is returned when there is no text to extract from.
var ErrEmptyDocument = errors.New("document is empty")

// maxDocumentChars caps how much document text goes into a prompt.
const maxDocumentChars = 60000

const extractionPrompt = `You are a project assurance expert. Extract lessons learned from the following document. Capture both explicit lessons (clearly stated) and implicit lessons (inferred from issues, findings, and recommendations).

DOCUMENT NAME: %s
DOCUMENT TYPE: %s

DOCUMENT TEXT:
%s

Extract 5-10 lessons. For each lesson provide the situation (context), what happened (observation), the consequence (impact), and what to do about it (recommendation). Assign each lesson one category from this list: %s. Rate your confidence in each lesson from 1-10 (use lower confidence for implicit lessons).

Return your response as a JSON object with this structure:
{
  "lessons": [
    {
      "title": "string",
      "description": "string",
      "category": "one of the listed categories",
      "context": "string",
      "observation": "string",
      "impact": "string",
      "recommendation": "string",
      "actionableSteps": ["step 1", "step 2"],
      "tags": ["tag1", "tag2"],
      "applicability": "universal" | "sector_specific" | "project_specific",
      "confidence": number (1-10)
    }
  ],
  "summary": "2-3 sentence summary of the document",
  "keyThemes": ["theme 1", "theme 2"]
}`

const enrichmentPrompt = `You are a project assurance expert. Write a short practical summary of the following lesson learned for a project manager deciding whether it applies to their project.

LESSON:
Title: %s
Category: %s
Context: %s
Observation: %s
Impact: %s
Recommendation: %s

Return your response as a JSON object with this structure:
{
  "summary": "2-3 sentence practical summary",
  "actionableSteps": ["step 1", "step 2", "step 3"]
}`

// Config wires an Extractor. A nil Provider means permanent demo mode.
type Config struct {
	Provider  llm.Provider
	DemoMode  bool
	DemoDelay time.Duration
	Timeout   time.Duration
	MaxTokens int
}

// Extractor turns document text into structured lessons.
type Extractor struct {
	cfg Config
	now func() time.Time
}

// NewExtractor creates an Extractor with default timeout and token budget.
func NewExtractor(cfg Config) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Extractor{cfg: cfg, now: time.Now}
}

func (e *Extractor) live() bool {
	return !e.cfg.DemoMode && e.cfg.Provider != nil && e.cfg.Provider.IsConfigured()
}

// Extract pulls lessons out of a document. Unlike the risk and WBS
// adapters, a live call that cannot be parsed is a hard error: a fabricated
// fallback lesson set would misrepresent the document.
func (e *Extractor) Extract(ctx context.Context, text, name, docType string) (ExtractionResult, advisor.Meta, error) {
	if strings.TrimSpace(text) == "" {
		return ExtractionResult{}, advisor.Meta{}, ErrEmptyDocument
	}
	if docType == "" {
		docType = SourceAssuranceReport
	}

	if !e.live() {
		if err := e.simulateDelay(ctx); err != nil {
			return ExtractionResult{}, advisor.Meta{}, err
		}
		result := ExtractionResult{
			Lessons:      demoLessons(name, docType, e.now()),
			Summary:      demoSummary,
			KeyThemes:    demoKeyThemes(),
			DocumentName: name,
			DocumentType: docType,
		}
		return result, advisor.Meta{Source: advisor.SourceFallback, Cause: e.offlineCause()}, nil
	}

	if len(text) > maxDocumentChars {
		cut := maxDocumentChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	prompt := fmt.Sprintf(extractionPrompt, name, docType, text, categoryList())

	raw, err := e.generate(ctx, prompt)
	if err != nil {
		return ExtractionResult{}, advisor.Meta{}, fmt.Errorf("extracting lessons: %w", err)
	}

	obj, ok := llm.ExtractJSONObject(raw)
	if !ok {
		return ExtractionResult{}, advisor.Meta{}, errors.New("no JSON object in extraction response")
	}

	var parsed struct {
		Lessons []struct {
			Title           string   `json:"title"`
			Description     string   `json:"description"`
			Category        string   `json:"category"`
			Context         string   `json:"context"`
			Observation     string   `json:"observation"`
			Impact          string   `json:"impact"`
			Recommendation  string   `json:"recommendation"`
			ActionableSteps []string `json:"actionableSteps"`
			Tags            []string `json:"tags"`
			Applicability   string   `json:"applicability"`
			Confidence      int      `json:"confidence"`
		} `json:"lessons"`
		Summary   string   `json:"summary"`
		KeyThemes []string `json:"keyThemes"`
	}
	if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
		return ExtractionResult{}, advisor.Meta{}, fmt.Errorf("parsing extraction response: %w", err)
	}
	if len(parsed.Lessons) == 0 {
		return ExtractionResult{}, advisor.Meta{}, errors.New("extraction response contained no lessons")
	}

	now := e.now()
	lessons := make([]Lesson, len(parsed.Lessons))
	for i, p := range parsed.Lessons {
		category := Category(p.Category)
		if !ValidCategory(category) {
			category = CategoryDelivery
		}
		applicability := Applicability(p.Applicability)
		switch applicability {
		case ApplicabilityUniversal, ApplicabilitySectorSpecific, ApplicabilityProjectSpecific:
		default:
			applicability = ApplicabilityUniversal
		}
		title := p.Title
		if title == "" {
			title = "Untitled Lesson"
		}
		confidence := risk.Clamp(p.Confidence, 1, 10)

		lessons[i] = Lesson{
			ID:                    "lesson-" + uuid.NewString(),
			Title:                 title,
			Description:           p.Description,
			Category:              category,
			Source:                name,
			SourceType:            docType,
			DateIdentified:        now,
			Context:               p.Context,
			Observation:           p.Observation,
			Impact:                p.Impact,
			Recommendation:        p.Recommendation,
			ActionableSteps:       p.ActionableSteps,
			Tags:                  p.Tags,
			RelatedPhases:         RelatedPhases(category),
			RelatedRiskCategories: RelatedRiskCategories(category),
			Applicability:         applicability,
			Confidence:            confidence,
			NeedsReview:           confidence < reviewConfidenceThreshold,
		}
	}

	result := ExtractionResult{
		Lessons:      lessons,
		Summary:      parsed.Summary,
		KeyThemes:    parsed.KeyThemes,
		DocumentName: name,
		DocumentType: docType,
	}
	return result, advisor.Meta{Source: advisor.SourceLive}, nil
}

// Enrich adds a practical summary and extra actionable steps to a lesson.
// This path follows the adapter fallback policy: a failed or unparsable
// call degrades to a composed summary instead of an error.
func (e *Extractor) Enrich(ctx context.Context, lesson Lesson) (Lesson, advisor.Meta, error) {
	if strings.TrimSpace(lesson.Title) == "" {
		return Lesson{}, advisor.Meta{}, errors.New("lesson has no title")
	}

	if !e.live() {
		if err := e.simulateDelay(ctx); err != nil {
			return Lesson{}, advisor.Meta{}, err
		}
		lesson.Summary = composeSummary(lesson)
		return lesson, advisor.Meta{Source: advisor.SourceFallback, Cause: e.offlineCause()}, nil
	}

	prompt := fmt.Sprintf(enrichmentPrompt, lesson.Title, lesson.Category, lesson.Context, lesson.Observation, lesson.Impact, lesson.Recommendation)

	raw, err := e.generate(ctx, prompt)
	if err == nil {
		if obj, ok := llm.ExtractJSONObject(raw); ok {
			var parsed struct {
				Summary         string   `json:"summary"`
				ActionableSteps []string `json:"actionableSteps"`
			}
			if jsonErr := json.Unmarshal([]byte(obj), &parsed); jsonErr == nil && parsed.Summary != "" {
				lesson.Summary = parsed.Summary
				if len(parsed.ActionableSteps) > 0 {
					lesson.ActionableSteps = mergeSteps(lesson.ActionableSteps, parsed.ActionableSteps)
				}
				return lesson, advisor.Meta{Source: advisor.SourceLive}, nil
			}
			err = errors.New("enrichment response missing summary")
		} else {
			err = errors.New("no JSON object in enrichment response")
		}
	}

	lesson.Summary = composeSummary(lesson)
	return lesson, advisor.Meta{Source: advisor.SourceFallback, Cause: err.Error()}, nil
}

func (e *Extractor) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()
	return e.cfg.Provider.Generate(ctx, prompt, e.cfg.MaxTokens)
}

func (e *Extractor) simulateDelay(ctx context.Context) error {
	if e.cfg.DemoDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(e.cfg.DemoDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Extractor) offlineCause() string {
	if e.cfg.DemoMode {
		return "demo mode"
	}
	return "no provider configured"
}

func composeSummary(l Lesson) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(l.Description))
	if rec := strings.TrimSpace(l.Recommendation); rec != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(rec)
	}
	if b.Len() == 0 {
		return l.Title
	}
	return b.String()
}

func mergeSteps(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(strings.TrimSpace(s))] = true
	}
	merged := append([]string(nil), existing...)
	for _, s := range extra {
		if !seen[strings.ToLower(strings.TrimSpace(s))] {
			merged = append(merged, s)
		}
	}
	return merged
}

func categoryList() string {
	names := make([]string, len(Categories))
	for i, c := range Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
