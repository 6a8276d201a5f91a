package ports

import (
	"context"
	"io"

	"scribewire/internal/domain"
)

// SessionClient is a reconnecting streaming session to the transcription
// service. Outbound intents are best-effort: they are silently skipped
// while the transport is not open.
type SessionClient interface {
	Connect(ctx context.Context, topic string) error
	Disconnect()
	ChangeTopic(ctx context.Context, topic string) error
	Status() domain.ConnStatus

	On(t domain.EventType, h func(domain.Event))
	OnStatusChange(h func(domain.ConnStatus))

	StartSession()
	StopSession()
	PauseSession()
	ResumeSession()
	ResetTranscript()
	SetPatient(name string)
	GenerateSOAP()
	Ping()
	SendAudio(frame []byte)
}

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// Vocabulary normalizes dictated text using deterministic rules.
type Vocabulary interface {
	Apply(text string) (string, error)
}

// NoteStore persists dictation sessions, transcript segments and derived
// artifacts.
type NoteStore interface {
	CreateSession(ctx context.Context, topic string) (*domain.Session, error)
	SetPatient(ctx context.Context, sessionID int64, name string) error
	CompleteSession(ctx context.Context, sessionID int64) error
	InsertSegment(ctx context.Context, seg domain.Segment) (int64, error)
	ListSegments(ctx context.Context, sessionID int64) ([]domain.Segment, error)
	UpsertArtifact(ctx context.Context, artifact domain.Artifact) error
	GetArtifact(ctx context.Context, sessionID int64, kind string) (*domain.Artifact, error)
	Close() error
}

// ArtifactSink delivers derived artifacts and finished notes downstream.
type ArtifactSink interface {
	Send(ctx context.Context, sessionID int64, kind string, body []byte) error
}

// EventSink emits backend state/events to the host UI.
type EventSink interface {
	ConnStatusChanged(status domain.ConnStatus)
	DictationStateChanged(state domain.DictationState, reason domain.DictationStateReason)
	PartialTranscript(text, speaker string)
	FinalSegment(seg domain.Segment)
	ArtifactUpdated(kind string, data []byte)
	ProcessingStatus(status string)
	Reasoning(text, icon string)
	SessionError(code domain.ErrorCode, detail string)
}
