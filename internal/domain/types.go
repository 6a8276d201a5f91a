package domain

import "time"

// ConnStatus is the connection status surface exposed to the host.
type ConnStatus string

const (
	StatusConnecting   ConnStatus = "connecting"
	StatusConnected    ConnStatus = "connected"
	StatusDisconnected ConnStatus = "disconnected"
	StatusError        ConnStatus = "error"
)

// DictationState models the dictation session lifecycle.
type DictationState string

const (
	DictationStateIdle      DictationState = "idle"
	DictationStateRecording DictationState = "recording"
	DictationStatePaused    DictationState = "paused"
	DictationStateStopping  DictationState = "stopping"
	DictationStateError     DictationState = "error"
)

// DictationStateReason provides a structured reason for state transitions.
type DictationStateReason string

const (
	DictationReasonStarted       DictationStateReason = "dictation_started"
	DictationReasonRestarted     DictationStateReason = "dictation_restarted"
	DictationReasonPaused        DictationStateReason = "dictation_paused"
	DictationReasonResumed       DictationStateReason = "dictation_resumed"
	DictationReasonFinishing     DictationStateReason = "finishing_note"
	DictationReasonNoteSaved     DictationStateReason = "note_saved"
	DictationReasonDiscarded     DictationStateReason = "dictation_discarded"
	DictationReasonNoTranscript  DictationStateReason = "no_transcript"
	DictationReasonConnectFailed DictationStateReason = "connect_failed"
	DictationReasonStoreFailed   DictationStateReason = "store_failed"
)

// ErrorCode identifies non-fatal backend errors surfaced to the host.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeConnection  ErrorCode = "connection"
	ErrorCodeAudioStop   ErrorCode = "audio_stop"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeServer      ErrorCode = "server"
	ErrorCodeVocabulary  ErrorCode = "vocabulary"
	ErrorCodeStore       ErrorCode = "store"
	ErrorCodeWebhook     ErrorCode = "webhook"
)

// Session is a persisted dictation session.
type Session struct {
	ID        int64
	Topic     string
	Patient   string
	StartedAt time.Time
	EndedAt   *time.Time
	Status    string
}

// Segment is a finalized, speaker-attributed transcript line.
type Segment struct {
	ID          int64
	SessionID   int64
	Speaker     string
	SpeakerRole string
	Text        string
	StartTime   float64
	EndTime     float64
	CreatedAt   time.Time
}

// Artifact is the latest derived output of a given kind for a session,
// e.g. a SOAP note or suggested ICD codes produced downstream.
type Artifact struct {
	SessionID int64
	Kind      string
	Body      []byte
	UpdatedAt time.Time
}

// NoteResult is returned once a dictation is stopped and the note assembled.
type NoteResult struct {
	SessionID int64  `json:"sessionId"`
	RawNote   string `json:"rawNote"`
	FinalNote string `json:"finalNote"`
	Segments  int    `json:"segments"`
	Persisted bool   `json:"persisted"`
}
