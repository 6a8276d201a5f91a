package bootstrap

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"

	"scribewire/internal/config"
	"scribewire/internal/ports"
	"scribewire/internal/tui"
	"scribewire/internal/usecase"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:                      "development",
		ServiceURL:               "http://localhost:8000",
		Topic:                    "en",
		MaxReconnectAttempts:     5,
		ReconnectBaseDelay:       time.Second,
		SampleRate:               16000,
		Channels:                 1,
		ChunkSize:                4096,
		VocabularyIterationLimit: 30,
		DatabasePath:             filepath.Join(t.TempDir(), "scribewire.db"),
	}
}

func TestSetupResolvesFullGraph(t *testing.T) {
	t.Parallel()

	injector := Setup(testConfig(t))

	controller, err := do.Invoke[*usecase.DictationController](injector)
	if err != nil {
		t.Fatalf("failed to resolve controller: %v", err)
	}
	if controller == nil {
		t.Fatal("controller is nil")
	}

	store, err := do.Invoke[ports.NoteStore](injector)
	if err != nil {
		t.Fatalf("failed to resolve store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	}()

	sink, err := do.Invoke[*tui.Sink](injector)
	if err != nil {
		t.Fatalf("failed to resolve sink: %v", err)
	}
	if sink == nil {
		t.Fatal("sink is nil")
	}
}

func TestEventSinkIsTheTUISink(t *testing.T) {
	t.Parallel()

	injector := Setup(testConfig(t))

	sink := do.MustInvoke[*tui.Sink](injector)
	events := do.MustInvoke[ports.EventSink](injector)

	if events != ports.EventSink(sink) {
		t.Fatal("event sink should be the TUI sink instance")
	}
}
