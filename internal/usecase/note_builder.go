package usecase

import (
	"context"

	"scribewire/internal/domain"
	"scribewire/internal/ports"
)

// noteBuilder turns the collected transcript into the finished note and
// pushes it downstream. Persistence and delivery failures are reported but
// do not lose the note text.
type noteBuilder struct {
	vocab  ports.Vocabulary
	store  ports.NoteStore
	sink   ports.ArtifactSink
	events ports.EventSink
}

func newNoteBuilder(vocab ports.Vocabulary, store ports.NoteStore, sink ports.ArtifactSink, events ports.EventSink) noteBuilder {
	return noteBuilder{vocab: vocab, store: store, sink: sink, events: events}
}

func (b noteBuilder) Finalize(ctx context.Context, sessionID int64, raw string, segments int) (domain.NoteResult, domain.DictationStateReason, error) {
	final, err := b.vocab.Apply(raw)
	if err != nil {
		b.events.SessionError(domain.ErrorCodeVocabulary, err.Error())
		final = raw
	}

	result := domain.NoteResult{
		SessionID: sessionID,
		RawNote:   raw,
		FinalNote: final,
		Segments:  segments,
		Persisted: sessionID != 0,
	}
	reason := domain.DictationReasonNoteSaved

	if sessionID != 0 {
		artifact := domain.Artifact{SessionID: sessionID, Kind: "note", Body: []byte(final)}
		if err := b.store.UpsertArtifact(ctx, artifact); err != nil {
			result.Persisted = false
			reason = domain.DictationReasonStoreFailed
			b.events.SessionError(domain.ErrorCodeStore, err.Error())
		}
		if err := b.store.CompleteSession(ctx, sessionID); err != nil {
			result.Persisted = false
			b.events.SessionError(domain.ErrorCodeStore, err.Error())
		}
	}

	if err := b.sink.Send(ctx, sessionID, "note", []byte(final)); err != nil {
		b.events.SessionError(domain.ErrorCodeWebhook, err.Error())
	}

	return result, reason, nil
}
