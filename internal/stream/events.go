package stream

import (
	"scribewire/internal/domain"
)

// wireEvent mirrors the superset of fields the service attaches to its
// tagged JSON events.
type wireEvent struct {
	Type        string  `json:"type"`
	Text        string  `json:"text"`
	Speaker     string  `json:"speaker"`
	SpeakerRole string  `json:"speaker_role"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Language    string  `json:"language"`
	Diarize     bool    `json:"diarize"`
	Status      string  `json:"status"`
	Icon        string  `json:"icon"`
	Name        string  `json:"name"`
	Message     string  `json:"message"`
}

// normalize maps a decoded wire message onto the typed event surface.
// The raw payload travels along on derived-artifact updates, whose inner
// shape is owned by the downstream processor and stays opaque here.
func normalize(msg wireEvent, raw []byte) (domain.Event, bool) {
	t := domain.EventType(msg.Type)
	switch t {
	case domain.EventConnected:
		return domain.Event{Type: t, Language: msg.Language, Diarize: msg.Diarize}, true
	case domain.EventPartial, domain.EventFinal:
		return domain.Event{
			Type:        t,
			Text:        msg.Text,
			Speaker:     msg.Speaker,
			SpeakerRole: msg.SpeakerRole,
			StartTime:   msg.StartTime,
			EndTime:     msg.EndTime,
		}, true
	case domain.EventFormUpdate, domain.EventSuggestionsUpdate,
		domain.EventSOAPUpdate, domain.EventICDCodesUpdate:
		data := make([]byte, len(raw))
		copy(data, raw)
		return domain.Event{Type: t, Data: data}, true
	case domain.EventServerError:
		return domain.Event{Type: t, Message: msg.Message}, true
	case domain.EventPatientSet:
		return domain.Event{Type: t, Patient: msg.Name}, true
	case domain.EventEndOfUtterance:
		return domain.Event{Type: t, EndTime: msg.EndTime}, true
	case domain.EventAIProcessing:
		return domain.Event{Type: t, Status: msg.Status}, true
	case domain.EventReasoning:
		return domain.Event{Type: t, Text: msg.Text, Icon: msg.Icon}, true
	case domain.EventResetComplete, domain.EventPaused, domain.EventResumed,
		domain.EventPong, domain.EventDemoComplete:
		return domain.Event{Type: t}, true
	default:
		return domain.Event{}, false
	}
}

// command is an outbound control message.
type command struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}
