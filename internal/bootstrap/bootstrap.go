package bootstrap

import (
	"github.com/samber/do/v2"

	"scribewire/internal/audio"
	"scribewire/internal/config"
	"scribewire/internal/ports"
	"scribewire/internal/store"
	"scribewire/internal/stream"
	"scribewire/internal/tui"
	"scribewire/internal/usecase"
	"scribewire/internal/vocab"
	"scribewire/internal/webhook"
)

// Setup builds the dependency graph. The TUI sink is registered as the
// event sink; the program is attached to it after the Bubble Tea program
// exists.
func Setup(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)

	do.Provide(injector, func(i do.Injector) (*tui.Sink, error) {
		return tui.NewSink(nil), nil
	})
	do.Provide(injector, func(i do.Injector) (ports.EventSink, error) {
		return do.MustInvoke[*tui.Sink](i), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.SessionClient, error) {
		c := do.MustInvoke[*config.Config](i)
		return stream.NewClient(stream.Config{
			BaseURL:     c.ServiceURL,
			MaxAttempts: c.MaxReconnectAttempts,
			BaseDelay:   c.ReconnectBaseDelay,
			Keepalive:   c.KeepaliveInterval,
		}), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.AudioCapture, error) {
		c := do.MustInvoke[*config.Config](i)
		return audio.NewMicCapture(c.RecorderCommand), nil
	})

	do.Provide(injector, func(i do.Injector) (ports.Vocabulary, error) {
		c := do.MustInvoke[*config.Config](i)
		return vocab.New(c.VocabularyFile, c.VocabularyIterationLimit)
	})

	do.Provide(injector, func(i do.Injector) (ports.NoteStore, error) {
		c := do.MustInvoke[*config.Config](i)
		return store.NewSQLite(c.DatabasePath)
	})

	do.Provide(injector, func(i do.Injector) (ports.ArtifactSink, error) {
		c := do.MustInvoke[*config.Config](i)
		return webhook.NewHTTPSink(c.ArtifactWebhookURL), nil
	})

	do.Provide(injector, func(i do.Injector) (*usecase.DictationController, error) {
		c := do.MustInvoke[*config.Config](i)
		return usecase.NewDictationController(
			do.MustInvoke[ports.SessionClient](i),
			do.MustInvoke[ports.AudioCapture](i),
			do.MustInvoke[ports.Vocabulary](i),
			do.MustInvoke[ports.NoteStore](i),
			do.MustInvoke[ports.ArtifactSink](i),
			do.MustInvoke[ports.EventSink](i),
			usecase.Config{
				Audio: ports.AudioConfig{
					SampleRate:  c.SampleRate,
					Channels:    c.Channels,
					InputFormat: c.AudioInputFormat,
					InputDevice: c.AudioInputDevice,
				},
				Topic:     c.Topic,
				ChunkSize: c.ChunkSize,
			},
		), nil
	})

	return injector
}
