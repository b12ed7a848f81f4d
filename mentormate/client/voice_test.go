package client

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type scriptedRecognizer struct {
	started int
	stopped int
}

func (r *scriptedRecognizer) Start(ctx context.Context) (<-chan string, error) {
	r.started++
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func (r *scriptedRecognizer) Stop() error {
	r.stopped++
	return nil
}

func TestCaptureToggleStopsActiveSession(t *testing.T) {
	rec := &scriptedRecognizer{}
	ctrl := NewCaptureController(rec)
	ctx := context.Background()

	_, active, err := ctrl.Toggle(ctx)
	if err != nil || !active {
		t.Fatalf("first toggle should start capture: active=%v err=%v", active, err)
	}

	// Starting again while active means stop.
	_, active, err = ctrl.Toggle(ctx)
	if err != nil || active {
		t.Fatalf("second toggle should stop capture: active=%v err=%v", active, err)
	}
	if rec.started != 1 || rec.stopped != 1 {
		t.Fatalf("expected one start and one stop, got %d/%d", rec.started, rec.stopped)
	}
}

func TestUnsupportedRecognizer(t *testing.T) {
	ctrl := NewCaptureController(UnsupportedRecognizer{})

	_, active, err := ctrl.Toggle(context.Background())
	if !errors.Is(err, ErrCaptureUnsupported) {
		t.Fatalf("expected ErrCaptureUnsupported, got %v", err)
	}
	if active || ctrl.Active() {
		t.Fatal("capture must not become active without a recognizer")
	}
}

func TestFilePlayerWritesAudio(t *testing.T) {
	dir := t.TempDir()
	player := FilePlayer{Dir: dir, Format: "mp3"}

	if err := player.Play([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Play err: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "mentor-*.mp3"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one audio file, got %v (err %v)", files, err)
	}
	data, err := os.ReadFile(files[0])
	if err != nil || len(data) != 3 {
		t.Fatalf("audio file content wrong: %v (err %v)", data, err)
	}
}

func TestFilePlayerRejectsEmptyAudio(t *testing.T) {
	player := FilePlayer{Dir: t.TempDir(), Format: "mp3"}
	if err := player.Play(nil); err == nil {
		t.Fatal("expected error for empty audio")
	}
}
