package tts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httputils "mentormate/mentormate/utils/http"
	"mentormate/mentormate/utils/logging"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAIClient synthesizes mentor replies with a fixed voice and model.
// One call per turn, no retries, no caching.
type OpenAIClient struct {
	apiKey  string
	model   string
	voice   string
	format  string
	baseURL string
	client  *http.Client
}

func NewOpenAIClient(apiKey, model, voice, format string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		voice:   voice,
		format:  format,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL points the client at a different backend. Used by tests.
func (c *OpenAIClient) WithBaseURL(baseURL string) *OpenAIClient {
	c.baseURL = baseURL
	return c
}

type speechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format"`
}

// SynthesisError keeps the upstream status and body for diagnostics.
type SynthesisError struct {
	Status int
	Body   string
	Err    error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("synthesis failed: %v", e.Err)
	}
	return fmt.Sprintf("synthesis failed: status %d - %s", e.Status, e.Body)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Synthesize converts mentor text into compressed audio bytes.
func (c *OpenAIClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	defer logging.LogDuration(ctx, "openai_synthesize")()

	reqBody := speechRequest{
		Model:          c.model,
		Voice:          c.voice,
		Input:          text,
		ResponseFormat: c.format,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	audio, err := httputils.PostForBytes(ctx, c.client, c.baseURL+"/audio/speech", reqBody, headers)
	if err != nil {
		var upstream *httputils.UpstreamError
		if errors.As(err, &upstream) {
			logging.ErrorLogger.Error("tts request failed",
				zap.Int("status", upstream.Status), zap.String("body", upstream.Body))
			return nil, &SynthesisError{Status: upstream.Status, Body: upstream.Body}
		}
		return nil, &SynthesisError{Err: err}
	}

	if len(audio) == 0 {
		return nil, &SynthesisError{Status: http.StatusOK, Body: "empty audio body"}
	}
	return audio, nil
}

// Format reports the negotiated audio container, e.g. "mp3".
func (c *OpenAIClient) Format() string { return c.format }
