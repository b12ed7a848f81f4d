package controllers

import (
	"context"
	"fmt"
	"strings"

	"mentormate/mentormate/config"
	"mentormate/mentormate/sources/psql/models"
	"mentormate/mentormate/utils/logging"

	"go.uber.org/zap"
)

// MessageStore is the slice of the DAO the orchestrator needs.
type MessageStore interface {
	Append(ctx context.Context, userID int, role, text string) (*models.Message, error)
	ListByUser(ctx context.Context, userID int) ([]models.Message, error)
}

// Generator produces mentor text for one user utterance.
type Generator interface {
	Generate(ctx context.Context, text, personaInstruction string) (string, error)
}

// Synthesizer converts mentor text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type FailureKind string

const (
	ValidationFailure FailureKind = "validation"
	StorageFailure    FailureKind = "storage"
	GenerationFailure FailureKind = "generation"
)

// TurnError is the typed failure of a turn. For generation failures the
// already-persisted user message rides along so the client can still
// acknowledge receipt.
type TurnError struct {
	Kind        FailureKind
	Detail      string
	Err         error
	UserMessage *models.Message
}

func (e *TurnError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failure: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s failure: %s", e.Kind, e.Detail)
}

func (e *TurnError) Unwrap() error { return e.Err }

// TurnResult is the combined payload of one completed turn. Audio is nil
// when synthesis failed; both messages are persisted regardless.
type TurnResult struct {
	UserMessage   *models.Message `json:"userMessage"`
	MentorMessage *models.Message `json:"mentorMessage"`
	Audio         []byte          `json:"audio,omitempty"`
}

type MessagesController struct {
	store       MessageStore
	generator   Generator
	synthesizer Synthesizer
	persona     config.Persona
}

func NewMessagesController(store MessageStore, generator Generator, synthesizer Synthesizer, persona config.Persona) *MessagesController {
	return &MessagesController{
		store:       store,
		generator:   generator,
		synthesizer: synthesizer,
		persona:     persona,
	}
}

// SendMessage runs one full turn: persist the user utterance, generate
// the mentor reply, persist it, synthesize audio, return the triple.
// Step order is fixed; nothing is retried. A synthesis failure degrades
// to an audio-less result instead of discarding the persisted pair.
func (c *MessagesController) SendMessage(ctx context.Context, userID int, text string) (*TurnResult, error) {
	defer logging.LogDuration(ctx, "send_message_turn")()

	if strings.TrimSpace(text) == "" {
		return nil, &TurnError{Kind: ValidationFailure, Detail: "text must not be empty"}
	}

	userMsg, err := c.store.Append(ctx, userID, models.RoleUser, text)
	if err != nil {
		return nil, &TurnError{Kind: StorageFailure, Detail: "failed to save user message", Err: err}
	}

	mentorText, err := c.generator.Generate(ctx, text, c.persona.Instruction)
	if err != nil {
		return nil, &TurnError{
			Kind:        GenerationFailure,
			Detail:      "generation backend returned no usable candidate",
			Err:         err,
			UserMessage: userMsg,
		}
	}

	mentorMsg, err := c.store.Append(ctx, userID, models.RoleMentor, mentorText)
	if err != nil {
		// Mentor text is lost here on purpose; the pipeline never retries.
		return nil, &TurnError{
			Kind:        StorageFailure,
			Detail:      "failed to save mentor message",
			Err:         err,
			UserMessage: userMsg,
		}
	}

	audio, err := c.synthesizer.Synthesize(ctx, mentorText)
	if err != nil {
		// Both messages are durable at this point; return them without audio.
		logging.AppLogger.Warn("synthesis failed, returning turn without audio",
			zap.Int("user_id", userID), zap.Error(err))
		return &TurnResult{UserMessage: userMsg, MentorMessage: mentorMsg}, nil
	}

	return &TurnResult{UserMessage: userMsg, MentorMessage: mentorMsg, Audio: audio}, nil
}

// History returns the caller's full conversation, oldest first. Audio is
// never re-attached; it exists only on the in-flight turn response.
func (c *MessagesController) History(ctx context.Context, userID int) ([]models.Message, error) {
	msgs, err := c.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, &TurnError{Kind: StorageFailure, Detail: "failed to load messages", Err: err}
	}
	return msgs, nil
}
