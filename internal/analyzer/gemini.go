package analyzer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	geminiAPI          = "https://generativelanguage.googleapis.com"
	defaultGeminiModel = "gemini-2.5-flash"
)

// Gemini calls the Google Generative Language API with inline image data.
type Gemini struct {
	apiKey string
	model  string
	http   *resty.Client
}

// NewGemini creates a Gemini client. Empty baseURL and model use defaults.
func NewGemini(baseURL, apiKey, model string) *Gemini {
	if baseURL == "" {
		baseURL = geminiAPI
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		apiKey: apiKey,
		model:  model,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(60*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
}

// Analyze sends the image and prompt and parses the structured answer.
func (g *Gemini) Analyze(ctx context.Context, image []byte, mediaType string) (*Estimate, error) {
	body := map[string]any{
		"contents": []map[string]any{{
			"parts": []map[string]any{
				{"inlineData": map[string]string{
					"mimeType": mediaType,
					"data":     base64.StdEncoding.EncodeToString(image),
				}},
				{"text": Prompt},
			},
		}},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema,
		},
	}

	resp, err := g.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", g.apiKey).
		SetBody(body).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", g.model))
	if err != nil {
		return nil, fmt.Errorf("gemini api: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gemini api status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoContent
	}
	return parseEstimate(result.Candidates[0].Content.Parts[0].Text)
}
