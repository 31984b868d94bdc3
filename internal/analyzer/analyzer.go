package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lazypower/halflife/internal/config"
)

// ErrNoContent is returned when a provider answers without usable text.
var ErrNoContent = errors.New("no content in analyzer response")

// Confidence is the provider's self-reported certainty.
type Confidence string

const (
	High   Confidence = "High"
	Medium Confidence = "Medium"
	Low    Confidence = "Low"
)

// Estimate is a structured guess at what a photo shows.
type Estimate struct {
	DrinkName   string     `json:"drinkName"`
	EstimatedMg float64    `json:"estimatedMg"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning"`
	// Fallback is set when the estimate is the built-in default rather than
	// a provider answer.
	Fallback bool `json:"fallback"`
}

// Analyzer estimates caffeine content from an image (menu, label or drink).
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mediaType string) (*Estimate, error)
}

// New creates an analyzer for the configured provider.
func New(cfg config.AnalyzerConfig) (Analyzer, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY or config")
		}
		return NewGemini(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		return NewAnthropic(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case "none", "":
		return nil, fmt.Errorf("image analysis disabled")
	default:
		return nil, fmt.Errorf("unknown analyzer provider: %q", cfg.Provider)
	}
}

// DefaultEstimate is what the user gets when analysis is unavailable: an
// average brewed coffee, flagged low confidence.
func DefaultEstimate(reason string) *Estimate {
	if reason == "" {
		reason = "Could not reach the image analysis service."
	}
	return &Estimate{
		DrinkName:   "Unknown coffee drink (estimated)",
		EstimatedMg: 95,
		Confidence:  Low,
		Reasoning:   reason + " Using the average for a standard cup of brewed coffee.",
		Fallback:    true,
	}
}

// parseEstimate pulls the JSON object out of a model response. The response
// might be wrapped in markdown code fences or other text.
func parseEstimate(content string) (*Estimate, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 2 {
			content = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var est Estimate
	if err := json.Unmarshal([]byte(content[start:end+1]), &est); err != nil {
		return nil, fmt.Errorf("unmarshal estimate: %w", err)
	}
	if err := est.normalize(); err != nil {
		return nil, err
	}
	return &est, nil
}

// normalize rejects estimates the rest of the system cannot log and
// coerces confidence into the closed set.
func (e *Estimate) normalize() error {
	if math.IsNaN(e.EstimatedMg) || math.IsInf(e.EstimatedMg, 0) || e.EstimatedMg < 0 {
		return fmt.Errorf("estimate has invalid mg %v", e.EstimatedMg)
	}
	e.DrinkName = strings.TrimSpace(e.DrinkName)
	if e.DrinkName == "" {
		return fmt.Errorf("estimate has no drink name")
	}
	switch strings.ToLower(string(e.Confidence)) {
	case "high":
		e.Confidence = High
	case "medium":
		e.Confidence = Medium
	default:
		e.Confidence = Low
	}
	e.Fallback = false
	return nil
}
