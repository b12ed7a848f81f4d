package controllers

import (
	"context"
	"errors"
	"testing"
	"time"

	"mentormate/mentormate/config"
	"mentormate/mentormate/services/llm"
	"mentormate/mentormate/services/tts"
	"mentormate/mentormate/sources/psql/models"

	"github.com/google/uuid"
)

// memStore is an in-memory MessageStore with the same append-only,
// owner-scoped semantics as the postgres DAO.
type memStore struct {
	msgs       []models.Message
	failAppend bool
	seq        int64
}

func (s *memStore) Append(_ context.Context, userID int, role, text string) (*models.Message, error) {
	if s.failAppend {
		return nil, errors.New("store unavailable")
	}
	s.seq++
	msg := models.Message{
		ID:        uuid.New(),
		Seq:       s.seq,
		UserID:    userID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.msgs = append(s.msgs, msg)
	return &msg, nil
}

func (s *memStore) ListByUser(_ context.Context, userID int) ([]models.Message, error) {
	var out []models.Message
	for _, m := range s.msgs {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, text, persona string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type stubSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (s *stubSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

func newController(store MessageStore, gen Generator, synth Synthesizer) *MessagesController {
	return NewMessagesController(store, gen, synth, config.DefaultPersona())
}

func TestSendMessagePersistsPairInOrder(t *testing.T) {
	store := &memStore{}
	gen := &stubGenerator{reply: "Break big goals into small daily wins."}
	synth := &stubSynthesizer{audio: []byte{1, 2, 3}}
	ctrl := newController(store, gen, synth)

	result, err := ctrl.SendMessage(context.Background(), 7, "How do I stay motivated?")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	if result.UserMessage.Role != models.RoleUser || result.UserMessage.Text != "How do I stay motivated?" {
		t.Fatalf("unexpected user message: %+v", result.UserMessage)
	}
	if result.MentorMessage.Role != models.RoleMentor || result.MentorMessage.Text != gen.reply {
		t.Fatalf("unexpected mentor message: %+v", result.MentorMessage)
	}
	if string(result.Audio) != string([]byte{1, 2, 3}) {
		t.Fatalf("unexpected audio: %v", result.Audio)
	}

	msgs, err := ctrl.History(context.Background(), 7)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleMentor {
		t.Fatalf("messages out of order: %s then %s", msgs[0].Role, msgs[1].Role)
	}
	if msgs[0].ID != result.UserMessage.ID || msgs[1].ID != result.MentorMessage.ID {
		t.Fatal("persisted ids differ from returned ids")
	}
}

func TestSendMessageBlankTextNeverReachesGenerator(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		store := &memStore{}
		gen := &stubGenerator{reply: "unused"}
		ctrl := newController(store, gen, &stubSynthesizer{})

		_, err := ctrl.SendMessage(context.Background(), 1, text)
		var turnErr *TurnError
		if !errors.As(err, &turnErr) || turnErr.Kind != ValidationFailure {
			t.Fatalf("text %q: expected validation failure, got %v", text, err)
		}
		if gen.calls != 0 {
			t.Fatalf("text %q: generator was called", text)
		}
		if len(store.msgs) != 0 {
			t.Fatalf("text %q: store has %d messages", text, len(store.msgs))
		}
	}
}

func TestSendMessageGenerationFailureKeepsUserMessage(t *testing.T) {
	store := &memStore{}
	gen := &stubGenerator{err: &llm.GenerationError{Status: 200, Body: "no candidates in response"}}
	synth := &stubSynthesizer{}
	ctrl := newController(store, gen, synth)

	_, err := ctrl.SendMessage(context.Background(), 3, "hello")
	var turnErr *TurnError
	if !errors.As(err, &turnErr) || turnErr.Kind != GenerationFailure {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if turnErr.UserMessage == nil || turnErr.UserMessage.Text != "hello" {
		t.Fatalf("failure should carry the stored user message, got %+v", turnErr.UserMessage)
	}
	if synth.calls != 0 {
		t.Fatal("synthesizer should not run after a generation failure")
	}

	msgs, _ := ctrl.History(context.Background(), 3)
	if len(msgs) != 1 || msgs[0].Role != models.RoleUser {
		t.Fatalf("store should hold exactly the user message, got %+v", msgs)
	}
}

func TestSendMessageSynthesisFailureReturnsPairWithoutAudio(t *testing.T) {
	store := &memStore{}
	gen := &stubGenerator{reply: "advice"}
	synth := &stubSynthesizer{err: &tts.SynthesisError{Status: 200, Body: "empty audio body"}}
	ctrl := newController(store, gen, synth)

	result, err := ctrl.SendMessage(context.Background(), 5, "question")
	if err != nil {
		t.Fatalf("synthesis failure must not fail the turn: %v", err)
	}
	if result.Audio != nil {
		t.Fatalf("expected no audio, got %d bytes", len(result.Audio))
	}
	if result.UserMessage == nil || result.MentorMessage == nil {
		t.Fatal("both messages should be returned")
	}

	msgs, _ := ctrl.History(context.Background(), 5)
	if len(msgs) != 2 {
		t.Fatalf("both messages should be persisted, got %d", len(msgs))
	}
}

func TestSendMessageStorageFailureShortCircuits(t *testing.T) {
	store := &memStore{failAppend: true}
	gen := &stubGenerator{reply: "unused"}
	ctrl := newController(store, gen, &stubSynthesizer{})

	_, err := ctrl.SendMessage(context.Background(), 1, "hi")
	var turnErr *TurnError
	if !errors.As(err, &turnErr) || turnErr.Kind != StorageFailure {
		t.Fatalf("expected storage failure, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatal("generator should not run when the first write fails")
	}
}

func TestHistoryScopedToOwner(t *testing.T) {
	store := &memStore{}
	ctrl := newController(store, &stubGenerator{reply: "a"}, &stubSynthesizer{audio: []byte{9}})

	if _, err := ctrl.SendMessage(context.Background(), 1, "mine"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if _, err := ctrl.SendMessage(context.Background(), 2, "theirs"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}

	msgs, err := ctrl.History(context.Background(), 1)
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	for _, m := range msgs {
		if m.UserID != 1 {
			t.Fatalf("history leaked message for user %d", m.UserID)
		}
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages for user 1, got %d", len(msgs))
	}
}
