package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	httputils "mentormate/mentormate/utils/http"
	"mentormate/mentormate/utils/logging"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient calls the generateContent endpoint once per turn.
// No retries, no caching.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiClient(apiKey, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different backend. Used by tests.
func (c *GeminiClient) WithBaseURL(baseURL string) *GeminiClient {
	c.baseURL = baseURL
	return c
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// GenerationError is returned whenever the backend produced no usable
// candidate, keeping the upstream status and body for diagnostics.
type GenerationError struct {
	Status int
	Body   string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed: status %d - %s", e.Status, e.Body)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generate sends the user's text plus the fixed persona instruction and
// extracts the first candidate's text.
func (c *GeminiClient) Generate(ctx context.Context, text, personaInstruction string) (string, error) {
	defer logging.LogDuration(ctx, "gemini_generate")()

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: personaInstruction}},
		},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	var parsed geminiResponse
	if err := httputils.PostJSON(ctx, c.client, endpoint, reqBody, &parsed); err != nil {
		var upstream *httputils.UpstreamError
		if errors.As(err, &upstream) {
			logging.ErrorLogger.Error("gemini request failed",
				zap.Int("status", upstream.Status), zap.String("body", upstream.Body))
			return "", &GenerationError{Status: upstream.Status, Body: upstream.Body}
		}
		return "", &GenerationError{Err: err}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &GenerationError{Status: http.StatusOK, Body: "no candidates in response"}
	}

	mentorText := parsed.Candidates[0].Content.Parts[0].Text
	if mentorText == "" {
		return "", &GenerationError{Status: http.StatusOK, Body: "empty candidate text"}
	}
	return mentorText, nil
}
