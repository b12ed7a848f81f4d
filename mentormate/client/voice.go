package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrCaptureUnsupported is reported by environments without a speech
// recognizer.
var ErrCaptureUnsupported = errors.New("speech capture not supported")

// Recognizer is the environment-provided speech capture capability.
// Transcripts arrive on the returned channel until Stop or ctx end.
type Recognizer interface {
	Start(ctx context.Context) (<-chan string, error)
	Stop() error
}

// Player plays one audio payload to completion.
type Player interface {
	Play(audio []byte) error
}

// UnsupportedRecognizer is the no-capture variant for platforms without
// a microphone pipeline.
type UnsupportedRecognizer struct{}

func (UnsupportedRecognizer) Start(ctx context.Context) (<-chan string, error) {
	return nil, ErrCaptureUnsupported
}

func (UnsupportedRecognizer) Stop() error { return nil }

// NopPlayer discards audio. Useful in tests and headless runs.
type NopPlayer struct{}

func (NopPlayer) Play(audio []byte) error { return nil }

// FilePlayer drops each payload into a directory so an external player
// can pick it up; the terminal client has no audio device binding.
type FilePlayer struct {
	Dir    string
	Format string
}

func (p FilePlayer) Play(audio []byte) error {
	if len(audio) == 0 {
		return errors.New("no audio to play")
	}
	name := fmt.Sprintf("mentor-%d.%s", time.Now().UnixNano(), p.Format)
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write audio file: %w", err)
	}
	fmt.Printf("audio saved to %s\n", path)
	return nil
}

// CaptureController enforces the one-active-capture rule: starting while
// a capture is running stops it instead.
type CaptureController struct {
	recognizer Recognizer
	active     bool
}

func NewCaptureController(recognizer Recognizer) *CaptureController {
	return &CaptureController{recognizer: recognizer}
}

// Toggle starts a capture session, or stops the running one. The bool
// reports whether a capture is active after the call.
func (c *CaptureController) Toggle(ctx context.Context) (<-chan string, bool, error) {
	if c.active {
		c.active = false
		return nil, false, c.recognizer.Stop()
	}
	transcripts, err := c.recognizer.Start(ctx)
	if err != nil {
		return nil, false, err
	}
	c.active = true
	return transcripts, true, nil
}

func (c *CaptureController) Active() bool { return c.active }
