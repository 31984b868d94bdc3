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
	anthropicAPI          = "https://api.anthropic.com"
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
)

// Anthropic calls the Anthropic Messages API with an image content block.
type Anthropic struct {
	apiKey string
	model  string
	http   *resty.Client
}

// NewAnthropic creates an Anthropic client. Empty baseURL and model use
// defaults.
func NewAnthropic(baseURL, apiKey, model string) *Anthropic {
	if baseURL == "" {
		baseURL = anthropicAPI
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		apiKey: apiKey,
		model:  model,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(60*time.Second).
			SetHeader("Content-Type", "application/json").
			SetHeader("anthropic-version", "2023-06-01"),
	}
}

// Analyze sends the image and prompt to the Messages API.
func (a *Anthropic) Analyze(ctx context.Context, image []byte, mediaType string) (*Estimate, error) {
	body := map[string]any{
		"model":       a.model,
		"max_tokens":  512,
		"temperature": 0.2,
		"messages": []map[string]any{{
			"role": "user",
			"content": []map[string]any{
				{
					"type": "image",
					"source": map[string]string{
						"type":       "base64",
						"media_type": mediaType,
						"data":       base64.StdEncoding.EncodeToString(image),
					},
				},
				{"type": "text", "text": Prompt},
			},
		}},
	}

	resp, err := a.http.R().
		SetContext(ctx).
		SetHeader("x-api-key", a.apiKey).
		SetBody(body).
		Post("/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("anthropic api: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic api status %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	for _, c := range result.Content {
		if c.Type == "text" && c.Text != "" {
			return parseEstimate(c.Text)
		}
	}
	return nil, ErrNoContent
}
