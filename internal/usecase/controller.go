package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"scribewire/internal/domain"
	"scribewire/internal/ports"
)

var ErrNoActiveDictation = errors.New("no active dictation session")

// Config controls dictation behavior.
type Config struct {
	Audio     ports.AudioConfig
	Topic     string
	ChunkSize int
}

// DictationController orchestrates a dictation session: it drives the
// streaming session client, pumps microphone audio into it, collects the
// finalized transcript and assembles the note on stop.
type DictationController struct {
	client  ports.SessionClient
	audio   ports.AudioCapture
	store   ports.NoteStore
	events  ports.EventSink
	builder noteBuilder
	cfg     Config

	mu      sync.Mutex
	current *activeDictation
}

func NewDictationController(
	client ports.SessionClient,
	audio ports.AudioCapture,
	vocab ports.Vocabulary,
	store ports.NoteStore,
	sink ports.ArtifactSink,
	events ports.EventSink,
	cfg Config,
) *DictationController {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.Topic == "" {
		cfg.Topic = "en"
	}

	c := &DictationController{
		client:  client,
		audio:   audio,
		store:   store,
		events:  events,
		builder: newNoteBuilder(vocab, store, sink, events),
		cfg:     cfg,
	}
	c.registerHandlers()
	return c
}

// registerHandlers subscribes to the session client's event surface. The
// handlers stay registered for the controller's lifetime and consult the
// current dictation at delivery time.
func (c *DictationController) registerHandlers() {
	c.client.OnStatusChange(c.events.ConnStatusChanged)

	c.client.On(domain.EventPartial, func(ev domain.Event) {
		if d := c.peekCurrent(); d != nil {
			d.log.SetPartial(ev.Text)
		}
		c.events.PartialTranscript(ev.Text, ev.Speaker)
	})

	c.client.On(domain.EventFinal, func(ev domain.Event) {
		c.handleFinal(ev)
	})

	for _, t := range []domain.EventType{
		domain.EventFormUpdate,
		domain.EventSuggestionsUpdate,
		domain.EventSOAPUpdate,
		domain.EventICDCodesUpdate,
	} {
		kind := string(t)
		c.client.On(t, func(ev domain.Event) {
			c.handleArtifact(kind, ev.Data)
		})
	}

	c.client.On(domain.EventServerError, func(ev domain.Event) {
		c.events.SessionError(domain.ErrorCodeServer, ev.Message)
	})
	c.client.On(domain.EventAIProcessing, func(ev domain.Event) {
		c.events.ProcessingStatus(ev.Status)
	})
	c.client.On(domain.EventReasoning, func(ev domain.Event) {
		c.events.Reasoning(ev.Text, ev.Icon)
	})
	c.client.On(domain.EventResetComplete, func(domain.Event) {
		if d := c.peekCurrent(); d != nil {
			d.log.Reset()
		}
	})
}

func (c *DictationController) handleFinal(ev domain.Event) {
	seg := domain.Segment{
		Speaker:     ev.Speaker,
		SpeakerRole: ev.SpeakerRole,
		Text:        ev.Text,
		StartTime:   ev.StartTime,
		EndTime:     ev.EndTime,
	}

	d := c.peekCurrent()
	if d != nil {
		seg.SessionID = d.sessionID()
		d.log.Add(seg)
		if seg.SessionID != 0 {
			if id, err := c.store.InsertSegment(context.Background(), seg); err != nil {
				c.events.SessionError(domain.ErrorCodeStore, err.Error())
			} else {
				seg.ID = id
			}
		}
	}

	c.events.FinalSegment(seg)
}

func (c *DictationController) handleArtifact(kind string, data []byte) {
	if d := c.peekCurrent(); d != nil && d.sessionID() != 0 {
		artifact := domain.Artifact{SessionID: d.sessionID(), Kind: kind, Body: data}
		if err := c.store.UpsertArtifact(context.Background(), artifact); err != nil {
			c.events.SessionError(domain.ErrorCodeStore, err.Error())
		}
		if err := c.builder.sink.Send(context.Background(), d.sessionID(), kind, data); err != nil {
			c.events.SessionError(domain.ErrorCodeWebhook, err.Error())
		}
	}
	c.events.ArtifactUpdated(kind, data)
}

// Start begins a new dictation. An already running dictation is discarded
// and restarted.
func (c *DictationController) Start(ctx context.Context) error {
	var previous *activeDictation

	c.mu.Lock()
	if c.current != nil {
		previous = c.current
		c.current = nil
	}
	c.mu.Unlock()

	if previous != nil {
		c.teardown(previous)
	}

	if err := c.client.Connect(ctx, c.cfg.Topic); err != nil {
		c.events.SessionError(domain.ErrorCodeConnection, err.Error())
		c.events.DictationStateChanged(domain.DictationStateError, domain.DictationReasonConnectFailed)
		return err
	}

	session, err := c.store.CreateSession(ctx, c.cfg.Topic)
	if err != nil {
		// Dictation still runs, just unpersisted.
		c.events.SessionError(domain.ErrorCodeStore, err.Error())
		session = nil
	}

	dictationCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	audioSession, err := c.audio.Start(dictationCtx, c.cfg.Audio)
	if err != nil {
		cancel()
		c.events.SessionError(domain.ErrorCodeAudioStream, err.Error())
		c.events.DictationStateChanged(domain.DictationStateError, domain.DictationReasonConnectFailed)
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	active := &activeDictation{
		cancel:    cancel,
		audio:     audioSession,
		session:   session,
		state:     domain.DictationStateRecording,
		log:       newTranscriptLog(),
		audioDone: make(chan struct{}),
	}

	c.mu.Lock()
	c.current = active
	c.mu.Unlock()

	c.client.StartSession()
	go pumpAudioFrames(active, c.client, c.cfg.ChunkSize, c.events, active.audioDone)

	reason := domain.DictationReasonStarted
	if previous != nil {
		reason = domain.DictationReasonRestarted
	}
	c.events.DictationStateChanged(domain.DictationStateRecording, reason)
	return nil
}

// Pause suspends audio streaming without ending the dictation.
func (c *DictationController) Pause() error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}
	if active.getState() != domain.DictationStateRecording {
		return nil
	}

	active.paused.Store(true)
	active.setState(domain.DictationStatePaused)
	c.client.PauseSession()
	c.events.DictationStateChanged(domain.DictationStatePaused, domain.DictationReasonPaused)
	return nil
}

// Resume continues a paused dictation.
func (c *DictationController) Resume() error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}
	if active.getState() != domain.DictationStatePaused {
		return nil
	}

	active.paused.Store(false)
	active.setState(domain.DictationStateRecording)
	c.client.ResumeSession()
	c.events.DictationStateChanged(domain.DictationStateRecording, domain.DictationReasonResumed)
	return nil
}

// SetPatient attaches a patient name to the running dictation and tells the
// service, which echoes it back on derived artifacts.
func (c *DictationController) SetPatient(ctx context.Context, name string) error {
	c.client.SetPatient(name)

	active, err := c.getCurrent()
	if err != nil {
		return nil
	}
	if active.session == nil {
		return nil
	}

	if err := c.store.SetPatient(ctx, active.session.ID, name); err != nil {
		c.events.SessionError(domain.ErrorCodeStore, err.Error())
		return err
	}
	active.session.Patient = name
	return nil
}

// ResetTranscript discards collected lines and asks the service to do the
// same.
func (c *DictationController) ResetTranscript() error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}

	active.log.Reset()
	c.client.ResetTranscript()
	return nil
}

// RequestSOAP asks the service to derive a SOAP note from the transcript so
// far. The result arrives as a soap_update event.
func (c *DictationController) RequestSOAP() error {
	if _, err := c.getCurrent(); err != nil {
		return err
	}
	c.client.GenerateSOAP()
	return nil
}

// Stop ends the dictation and assembles the note.
func (c *DictationController) Stop(ctx context.Context) (domain.NoteResult, error) {
	active, err := c.getCurrent()
	if err != nil {
		return domain.NoteResult{}, err
	}

	active.setState(domain.DictationStateStopping)
	c.events.DictationStateChanged(domain.DictationStateStopping, domain.DictationReasonFinishing)

	if err := active.audio.Stop(); err != nil {
		c.events.SessionError(domain.ErrorCodeAudioStop, "failed to stop audio capture cleanly")
	}
	<-active.audioDone

	c.client.StopSession()

	raw := active.log.Raw()
	if raw == "" {
		c.finish(active, domain.DictationStateIdle, domain.DictationReasonNoTranscript)
		return domain.NoteResult{}, errors.New("no transcript captured")
	}

	result, reason, err := c.builder.Finalize(ctx, active.sessionID(), raw, active.log.Count())
	if err != nil {
		c.finish(active, domain.DictationStateError, reason)
		return domain.NoteResult{}, err
	}

	c.finish(active, domain.DictationStateIdle, reason)
	return result, nil
}

// Abort discards the dictation without assembling a note.
func (c *DictationController) Abort() error {
	active, err := c.getCurrent()
	if err != nil {
		return err
	}

	c.teardown(active)
	c.finish(active, domain.DictationStateIdle, domain.DictationReasonDiscarded)
	return nil
}

// Status reports the controller state.
func (c *DictationController) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Status{State: domain.DictationStateIdle, Active: false}
	}
	state := c.current.getState()
	return Status{State: state, Active: state != domain.DictationStateIdle}
}

// Close releases the controller's transport.
func (c *DictationController) Close() {
	if active, err := c.getCurrent(); err == nil {
		c.teardown(active)
		c.finish(active, domain.DictationStateIdle, domain.DictationReasonDiscarded)
	}
	c.client.Disconnect()
}

func (c *DictationController) getCurrent() (*activeDictation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, ErrNoActiveDictation
	}
	return c.current, nil
}

func (c *DictationController) peekCurrent() *activeDictation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *DictationController) teardown(active *activeDictation) {
	active.cancel()
	_ = active.audio.Stop()
	c.client.StopSession()
	<-active.audioDone
}

func (c *DictationController) finish(active *activeDictation, state domain.DictationState, reason domain.DictationStateReason) {
	active.cancel()
	active.setState(state)

	c.mu.Lock()
	if c.current == active {
		c.current = nil
	}
	c.mu.Unlock()

	c.events.DictationStateChanged(state, reason)
}
