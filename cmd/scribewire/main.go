package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/do/v2"

	"scribewire/internal/bootstrap"
	"scribewire/internal/config"
	"scribewire/internal/ports"
	"scribewire/internal/tui"
	"scribewire/internal/usecase"
)

func main() {
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "service_url", cfg.ServiceURL, "topic", cfg.Topic)

	injector := bootstrap.Setup(cfg)

	controller, err := do.Invoke[*usecase.DictationController](injector)
	if err != nil {
		slog.Error("failed to resolve dictation controller", "error", err)
		os.Exit(1)
	}
	sink, err := do.Invoke[*tui.Sink](injector)
	if err != nil {
		slog.Error("failed to resolve event sink", "error", err)
		os.Exit(1)
	}
	store := do.MustInvoke[ports.NoteStore](injector)

	program := tea.NewProgram(tui.New(controller), tea.WithAltScreen())
	sink.Attach(program)

	_, runErr := program.Run()

	controller.Close()
	if err := store.Close(); err != nil {
		slog.Error("failed to close note store", "error", err)
	}
	if runErr != nil {
		slog.Error("tui exited with error", "error", runErr)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// initLogger routes structured logs to stderr so they do not tear the TUI.
func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}
