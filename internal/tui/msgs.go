package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"scribewire/internal/domain"
	"scribewire/internal/ports"
)

type connStatusMsg struct {
	status domain.ConnStatus
}

type dictationStateMsg struct {
	state  domain.DictationState
	reason domain.DictationStateReason
}

type partialMsg struct {
	text    string
	speaker string
}

type segmentMsg struct {
	seg domain.Segment
}

type artifactMsg struct {
	kind string
	data []byte
}

type processingMsg struct {
	status string
}

type reasoningMsg struct {
	text string
	icon string
}

type sessionErrMsg struct {
	code   domain.ErrorCode
	detail string
}

type noteSavedMsg struct {
	result domain.NoteResult
}

type actionErrMsg struct {
	err error
}

// sender is the part of *tea.Program the sink needs.
type sender interface {
	Send(tea.Msg)
}

// Sink bridges backend events onto the Bubble Tea message loop. The program
// is attached after construction because the model that the program runs
// needs the controller, which needs the sink. Events arriving before Attach
// are dropped.
type Sink struct {
	mu sync.Mutex
	p  sender
}

func NewSink(p sender) *Sink {
	return &Sink{p: p}
}

func (s *Sink) Attach(p sender) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
}

func (s *Sink) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

var _ ports.EventSink = (*Sink)(nil)

func (s *Sink) ConnStatusChanged(status domain.ConnStatus) {
	s.send(connStatusMsg{status: status})
}

func (s *Sink) DictationStateChanged(state domain.DictationState, reason domain.DictationStateReason) {
	s.send(dictationStateMsg{state: state, reason: reason})
}

func (s *Sink) PartialTranscript(text, speaker string) {
	s.send(partialMsg{text: text, speaker: speaker})
}

func (s *Sink) FinalSegment(seg domain.Segment) {
	s.send(segmentMsg{seg: seg})
}

func (s *Sink) ArtifactUpdated(kind string, data []byte) {
	s.send(artifactMsg{kind: kind, data: data})
}

func (s *Sink) ProcessingStatus(status string) {
	s.send(processingMsg{status: status})
}

func (s *Sink) Reasoning(text, icon string) {
	s.send(reasoningMsg{text: text, icon: icon})
}

func (s *Sink) SessionError(code domain.ErrorCode, detail string) {
	s.send(sessionErrMsg{code: code, detail: detail})
}
