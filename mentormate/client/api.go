package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mentormate/mentormate/sources/psql/models"
)

// ErrUnauthorized signals an invalid session; callers should drop the
// token and send the user back through login.
var ErrUnauthorized = errors.New("invalid session, please log in again")

// TurnResponse is the combined payload of one turn as it crosses the
// wire. Audio arrives base64-encoded and lands here as raw bytes.
type TurnResponse struct {
	UserMessage   models.Message `json:"userMessage"`
	MentorMessage models.Message `json:"mentorMessage"`
	Audio         []byte         `json:"audio"`
}

// APIClient talks to the MentorMate backend on behalf of the terminal
// client.
type APIClient struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
}

// Login exchanges a username for a bearer token and keeps it for
// subsequent calls.
func (c *APIClient) Login(ctx context.Context, username string) error {
	body, _ := json.Marshal(map[string]string{"username": username})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("login failed: %s", string(b))
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	c.token = payload.Token
	return nil
}

// SubmitTurn posts one user utterance and returns the reconciled pair
// plus audio.
func (c *APIClient) SubmitTurn(ctx context.Context, text string) (*TurnResponse, error) {
	body, _ := json.Marshal(map[string]string{"text": text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to send message: %s", string(b))
	}
	var turn TurnResponse
	if err := json.NewDecoder(resp.Body).Decode(&turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

// History loads the caller's stored conversation, oldest first.
func (c *APIClient) History(ctx context.Context) ([]models.Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/messages/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to load messages: %s", string(b))
	}
	var msgs []models.Message
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
