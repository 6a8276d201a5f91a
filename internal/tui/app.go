package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scribewire/internal/domain"
	"scribewire/internal/usecase"
)

// Controller is the dictation surface the TUI drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (domain.NoteResult, error)
	Pause() error
	Resume() error
	Abort() error
	ResetTranscript() error
	RequestSOAP() error
	SetPatient(ctx context.Context, name string) error
	Status() usecase.Status
}

// artifact panels shown with tab, in cycle order.
var panelKinds = []string{"soap_update", "form_update", "suggestions_update", "icd_codes_update"}

// Model is the root Bubble Tea model.
type Model struct {
	controller Controller
	keys       KeyMap

	width  int
	height int

	connStatus domain.ConnStatus
	dictState  domain.DictationState
	lastReason domain.DictationStateReason

	patient      string
	patientInput textinput.Model
	entering     bool

	transcript []string
	partial    string
	artifacts  map[string][]byte
	panelIdx   int

	processing string
	reasoning  string
	lastErr    string
	note       *domain.NoteResult
}

func New(controller Controller) Model {
	input := textinput.New()
	input.Placeholder = "patient name"
	input.CharLimit = 80

	return Model{
		controller:   controller,
		keys:         DefaultKeyMap(),
		connStatus:   domain.StatusDisconnected,
		dictState:    domain.DictationStateIdle,
		patientInput: input,
		artifacts:    make(map[string][]byte),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case connStatusMsg:
		m.connStatus = msg.status
		return m, nil

	case dictationStateMsg:
		m.dictState = msg.state
		m.lastReason = msg.reason
		if msg.reason == domain.DictationReasonStarted || msg.reason == domain.DictationReasonRestarted {
			m.transcript = nil
			m.partial = ""
			m.artifacts = make(map[string][]byte)
			m.note = nil
			m.lastErr = ""
		}
		return m, nil

	case partialMsg:
		m.partial = msg.text
		if msg.speaker != "" {
			m.partial = msg.speaker + ": " + msg.text
		}
		return m, nil

	case segmentMsg:
		m.partial = ""
		m.transcript = append(m.transcript, renderSegment(msg.seg))
		return m, nil

	case artifactMsg:
		m.artifacts[msg.kind] = msg.data
		return m, nil

	case processingMsg:
		m.processing = msg.status
		return m, nil

	case reasoningMsg:
		m.reasoning = msg.text
		if msg.icon != "" {
			m.reasoning = msg.icon + " " + msg.text
		}
		return m, nil

	case sessionErrMsg:
		m.lastErr = fmt.Sprintf("[%s] %s", msg.code, msg.detail)
		return m, nil

	case noteSavedMsg:
		result := msg.result
		m.note = &result
		m.processing = ""
		m.reasoning = ""
		return m, nil

	case actionErrMsg:
		if msg.err != nil {
			m.lastErr = msg.err.Error()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.entering {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.entering = false
			m.patientInput.Blur()
			return m, nil
		case msg.Type == tea.KeyEnter:
			name := strings.TrimSpace(m.patientInput.Value())
			m.entering = false
			m.patientInput.Blur()
			if name == "" {
				return m, nil
			}
			m.patient = name
			controller := m.controller
			return m, func() tea.Msg {
				return actionErrMsg{err: controller.SetPatient(context.Background(), name)}
			}
		}
		var cmd tea.Cmd
		m.patientInput, cmd = m.patientInput.Update(msg)
		return m, cmd
	}

	controller := m.controller
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Start):
		return m, func() tea.Msg {
			return actionErrMsg{err: controller.Start(context.Background())}
		}

	case key.Matches(msg, m.keys.Stop):
		return m, func() tea.Msg {
			result, err := controller.Stop(context.Background())
			if err != nil {
				return actionErrMsg{err: err}
			}
			return noteSavedMsg{result: result}
		}

	case key.Matches(msg, m.keys.Pause):
		if m.dictState == domain.DictationStatePaused {
			return m, func() tea.Msg { return actionErrMsg{err: controller.Resume()} }
		}
		return m, func() tea.Msg { return actionErrMsg{err: controller.Pause()} }

	case key.Matches(msg, m.keys.Abort):
		return m, func() tea.Msg { return actionErrMsg{err: controller.Abort()} }

	case key.Matches(msg, m.keys.Reset):
		return m, func() tea.Msg { return actionErrMsg{err: controller.ResetTranscript()} }

	case key.Matches(msg, m.keys.SOAP):
		return m, func() tea.Msg { return actionErrMsg{err: controller.RequestSOAP()} }

	case key.Matches(msg, m.keys.Patient):
		m.entering = true
		m.patientInput.SetValue("")
		return m, m.patientInput.Focus()

	case key.Matches(msg, m.keys.Panel):
		m.panelIdx = (m.panelIdx + 1) % len(panelKinds)
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		m.renderStatusBar(),
		m.renderTranscript(),
		m.renderPanel(),
	}

	if m.processing != "" {
		sections = append(sections, styleDimmed.Render("processing: "+m.processing))
	}
	if m.reasoning != "" {
		sections = append(sections, styleDimmed.Render(m.reasoning))
	}
	if m.lastErr != "" {
		sections = append(sections, styleError.Render(m.lastErr))
	}
	if m.note != nil {
		sections = append(sections, styleHeader.Render("--- NOTE ---"), m.note.FinalNote)
	}

	if m.entering {
		sections = append(sections, "patient: "+m.patientInput.View())
	}

	sections = append(sections, styleDimmed.Render(
		"  s:start  enter:finish  p:pause  a:discard  r:reset  o:soap  n:patient  tab:panel  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderStatusBar() string {
	parts := []string{
		styleHeader.Render("scribewire"),
		statusStyle(string(m.connStatus)).Render(string(m.connStatus)),
		string(m.dictState),
	}
	if m.patient != "" {
		parts = append(parts, stylePatient.Render("patient: "+m.patient))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTranscript() string {
	lines := []string{styleHeader.Render("--- TRANSCRIPT ---")}

	visible := m.transcript
	if max := m.transcriptHeight(); len(visible) > max {
		visible = visible[len(visible)-max:]
	}
	lines = append(lines, visible...)

	if m.partial != "" {
		lines = append(lines, stylePartial.Render(m.partial))
	}
	if len(m.transcript) == 0 && m.partial == "" {
		lines = append(lines, styleDimmed.Render("  (no dictation yet)"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderPanel() string {
	kind := panelKinds[m.panelIdx]
	lines := []string{styleHeader.Render("--- " + strings.ToUpper(strings.TrimSuffix(kind, "_update")) + " ---")}

	data, ok := m.artifacts[kind]
	if !ok {
		lines = append(lines, styleDimmed.Render("  (nothing yet)"))
	} else {
		lines = append(lines, string(data))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) transcriptHeight() int {
	h := m.height - 12
	if h < 4 {
		h = 4
	}
	return h
}

func renderSegment(seg domain.Segment) string {
	label := seg.SpeakerRole
	if label == "" {
		label = seg.Speaker
	}
	if label == "" {
		return seg.Text
	}
	return label + ": " + seg.Text
}
