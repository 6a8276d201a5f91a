package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"scribewire/internal/domain"
	"scribewire/internal/usecase"
)

func TestTranscriptAndPartialRendering(t *testing.T) {
	m := New(&fakeController{})
	m.width = 80
	m.height = 24

	next, _ := m.Update(partialMsg{text: "patient repor"})
	m = next.(Model)
	if !strings.Contains(m.View(), "patient repor") {
		t.Error("partial text should be rendered")
	}

	next, _ = m.Update(partialMsg{text: "patient reports hea", speaker: "clinician"})
	m = next.(Model)
	if !strings.Contains(m.View(), "clinician: patient reports hea") {
		t.Error("partial should carry the speaker label like final segments")
	}

	next, _ = m.Update(segmentMsg{seg: domain.Segment{SpeakerRole: "clinician", Text: "Patient reports headache."}})
	m = next.(Model)

	v := m.View()
	if !strings.Contains(v, "clinician: Patient reports headache.") {
		t.Error("final segment should be rendered with speaker label")
	}
	if strings.Contains(v, "patient repor\n") {
		t.Error("partial should be cleared after a final segment")
	}
}

func TestStartClearsPreviousDictation(t *testing.T) {
	m := New(&fakeController{})
	m.width = 80
	m.height = 24
	m.transcript = []string{"old line"}
	m.lastErr = "old error"

	next, _ := m.Update(dictationStateMsg{state: domain.DictationStateRecording, reason: domain.DictationReasonStarted})
	m = next.(Model)

	if len(m.transcript) != 0 {
		t.Error("transcript should be cleared on start")
	}
	if m.lastErr != "" {
		t.Error("error line should be cleared on start")
	}
}

func TestConnStatusShownInStatusBar(t *testing.T) {
	m := New(&fakeController{})
	m.width = 80
	m.height = 24

	next, _ := m.Update(connStatusMsg{status: domain.StatusConnecting})
	m = next.(Model)
	if !strings.Contains(m.View(), "connecting") {
		t.Error("status bar should show connecting")
	}

	next, _ = m.Update(connStatusMsg{status: domain.StatusConnected})
	m = next.(Model)
	if !strings.Contains(m.View(), "connected") {
		t.Error("status bar should show connected")
	}
}

func TestArtifactPanelCycling(t *testing.T) {
	m := New(&fakeController{})
	m.width = 80
	m.height = 24

	next, _ := m.Update(artifactMsg{kind: "form_update", data: []byte(`{"field":"hpi"}`)})
	m = next.(Model)

	if !strings.Contains(m.View(), "SOAP") {
		t.Error("first panel should be the SOAP panel")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)

	v := m.View()
	if !strings.Contains(v, "FORM") {
		t.Error("tab should cycle to the form panel")
	}
	if !strings.Contains(v, `{"field":"hpi"}`) {
		t.Error("form panel should show the artifact payload")
	}
}

func TestStopKeyProducesNoteSavedMsg(t *testing.T) {
	controller := &fakeController{
		stopResult: domain.NoteResult{SessionID: 4, FinalNote: "the note", Persisted: true},
	}
	m := New(controller)
	m.width = 80
	m.height = 24

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("enter should produce a command")
	}

	msg := cmd()
	saved, ok := msg.(noteSavedMsg)
	if !ok {
		t.Fatalf("expected noteSavedMsg, got %T", msg)
	}

	next, _ = m.Update(saved)
	m = next.(Model)
	if !strings.Contains(m.View(), "the note") {
		t.Error("saved note should be rendered")
	}
	if controller.calls["stop"] != 1 {
		t.Errorf("stop calls = %d", controller.calls["stop"])
	}
}

func TestPauseKeyTogglesByState(t *testing.T) {
	controller := &fakeController{}
	m := New(controller)
	m.width = 80
	m.height = 24
	m.dictState = domain.DictationStateRecording

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if cmd == nil {
		t.Fatal("pause key should produce a command")
	}
	cmd()
	if controller.calls["pause"] != 1 {
		t.Errorf("pause calls = %d", controller.calls["pause"])
	}

	m.dictState = domain.DictationStatePaused
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	cmd()
	if controller.calls["resume"] != 1 {
		t.Errorf("resume calls = %d", controller.calls["resume"])
	}
}

func TestPatientEntryFlow(t *testing.T) {
	controller := &fakeController{}
	m := New(controller)
	m.width = 80
	m.height = 24

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	m = next.(Model)
	if !m.entering {
		t.Fatal("n should open patient entry")
	}

	for _, r := range "Jane" {
		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if m.entering {
		t.Error("enter should close patient entry")
	}
	if cmd == nil {
		t.Fatal("enter should produce a command")
	}
	cmd()
	if controller.patient != "Jane" {
		t.Errorf("patient = %q", controller.patient)
	}
	if !strings.Contains(m.View(), "patient: Jane") {
		t.Error("status bar should show the patient")
	}
}

func TestSinkForwardsEvents(t *testing.T) {
	rec := &recordingSender{}
	sink := NewSink(rec)

	sink.ConnStatusChanged(domain.StatusConnected)
	sink.PartialTranscript("hi", "0")
	sink.FinalSegment(domain.Segment{Text: "hi there"})
	sink.ArtifactUpdated("soap_update", []byte(`{}`))
	sink.SessionError(domain.ErrorCodeServer, "boom")

	if len(rec.msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(rec.msgs))
	}
	if _, ok := rec.msgs[0].(connStatusMsg); !ok {
		t.Errorf("msg 0 = %T", rec.msgs[0])
	}
	if p, ok := rec.msgs[1].(partialMsg); !ok || p.text != "hi" {
		t.Errorf("msg 1 = %#v", rec.msgs[1])
	}
	if e, ok := rec.msgs[4].(sessionErrMsg); !ok || e.code != domain.ErrorCodeServer {
		t.Errorf("msg 4 = %#v", rec.msgs[4])
	}
}

type recordingSender struct {
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.msgs = append(r.msgs, msg)
}

type fakeController struct {
	calls      map[string]int
	patient    string
	stopResult domain.NoteResult
	err        error
}

func (f *fakeController) record(name string) {
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeController) Start(context.Context) error { f.record("start"); return f.err }

func (f *fakeController) Stop(context.Context) (domain.NoteResult, error) {
	f.record("stop")
	return f.stopResult, f.err
}

func (f *fakeController) Pause() error           { f.record("pause"); return f.err }
func (f *fakeController) Resume() error          { f.record("resume"); return f.err }
func (f *fakeController) Abort() error           { f.record("abort"); return f.err }
func (f *fakeController) ResetTranscript() error { f.record("reset"); return f.err }
func (f *fakeController) RequestSOAP() error     { f.record("soap"); return f.err }

func (f *fakeController) SetPatient(_ context.Context, name string) error {
	f.record("set_patient")
	f.patient = name
	return f.err
}

func (f *fakeController) Status() usecase.Status {
	return usecase.Status{State: domain.DictationStateIdle}
}
