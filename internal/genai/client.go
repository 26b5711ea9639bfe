// Package genai talks to the Gemini generateContent endpoint.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
)

// Generator turns a prompt into model text.
type Generator interface {
	GeneratePlanText(ctx context.Context, prompt string) (string, error)
}

// GenerationError reports any failure to obtain usable text. StatusCode is
// zero when the request never produced an HTTP response.
type GenerationError struct {
	Message    string
	StatusCode int
}

func (e *GenerationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("genai: %s (status %d)", e.Message, e.StatusCode)
	}
	return "genai: " + e.Message
}

type GeminiClient struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewGeminiClient(apiKey, model, baseURL string, timeout time.Duration) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &GeminiClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		HTTP:    http.DefaultClient,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type safetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason   string         `json:"blockReason"`
		SafetyRatings []safetyRating `json:"safetyRatings"`
	} `json:"promptFeedback"`
}

func (c *GeminiClient) GeneratePlanText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", &GenerationError{Message: "missing API key"}
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", &GenerationError{Message: "encode request: " + err.Error()}
	}
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.BaseURL, url.PathEscape(c.Model), url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Message: "build request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", &GenerationError{Message: "request failed: " + redactKey(err.Error(), c.APIKey)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &GenerationError{Message: "read response: " + err.Error(), StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &GenerationError{
			Message:    "unexpected response: " + strings.TrimSpace(string(raw)),
			StatusCode: resp.StatusCode,
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", &GenerationError{Message: "decode response: " + err.Error(), StatusCode: resp.StatusCode}
	}
	if len(decoded.Candidates) > 0 && len(decoded.Candidates[0].Content.Parts) > 0 {
		return decoded.Candidates[0].Content.Parts[0].Text, nil
	}
	if fb := decoded.PromptFeedback; fb != nil && (fb.BlockReason != "" || len(fb.SafetyRatings) > 0) {
		msg := "prompt blocked"
		if fb.BlockReason != "" {
			msg += ": " + fb.BlockReason
		}
		if len(fb.SafetyRatings) > 0 {
			msg += fmt.Sprintf(" (%s: %s)", fb.SafetyRatings[0].Category, fb.SafetyRatings[0].Probability)
		}
		return "", &GenerationError{Message: msg, StatusCode: resp.StatusCode}
	}
	return "", &GenerationError{Message: "empty candidates", StatusCode: resp.StatusCode}
}

func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "REDACTED")
}
