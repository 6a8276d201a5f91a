package domain

import "encoding/json"

// EventType discriminates inbound events from the transcription service.
type EventType string

const (
	EventConnected         EventType = "connected"
	EventPartial           EventType = "partial"
	EventFinal             EventType = "final"
	EventFormUpdate        EventType = "form_update"
	EventSuggestionsUpdate EventType = "suggestions_update"
	EventSOAPUpdate        EventType = "soap_update"
	EventICDCodesUpdate    EventType = "icd_codes_update"
	EventServerError       EventType = "error"
	EventResetComplete     EventType = "reset_complete"
	EventPaused            EventType = "paused"
	EventResumed           EventType = "resumed"
	EventPatientSet        EventType = "patient_set"
	EventPong              EventType = "pong"
	EventDemoComplete      EventType = "demo_complete"
	EventEndOfUtterance    EventType = "end_of_utterance"
	EventAIProcessing      EventType = "ai_processing"
	EventReasoning         EventType = "reasoning"
)

// Event is the normalized payload delivered to registered handlers.
// Fields are populated according to the event type; Data carries the raw
// wire message for derived-artifact updates whose shape is opaque to us.
type Event struct {
	Type        EventType       `json:"type"`
	Text        string          `json:"text,omitempty"`
	Speaker     string          `json:"speaker,omitempty"`
	SpeakerRole string          `json:"speakerRole,omitempty"`
	StartTime   float64         `json:"startTime,omitempty"`
	EndTime     float64         `json:"endTime,omitempty"`
	Language    string          `json:"language,omitempty"`
	Diarize     bool            `json:"diarize,omitempty"`
	Status      string          `json:"status,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Patient     string          `json:"patient,omitempty"`
	Message     string          `json:"message,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}
