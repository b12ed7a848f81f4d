package types

import "mentormate/mentormate/sources/psql/models"

type LoginRequest struct {
	Username string `json:"username"`
}

type SendMessageRequest struct {
	Text string `json:"text"`
}

// ErrorResponse mirrors the wire error object: a short error plus the
// upstream detail. UserMessage is set when the user's utterance was
// already durably stored before the failure.
type ErrorResponse struct {
	Error       string          `json:"error"`
	Details     string          `json:"details,omitempty"`
	UserMessage *models.Message `json:"userMessage,omitempty"`
}
