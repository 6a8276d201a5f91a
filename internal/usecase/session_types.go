package usecase

import (
	"sync"
	"sync/atomic"

	"scribewire/internal/domain"
	"scribewire/internal/ports"
)

// Status is the controller-level view of the dictation lifecycle.
type Status struct {
	State  domain.DictationState
	Active bool
}

type activeDictation struct {
	cancel func()
	audio  ports.AudioSession

	// session is nil when the store could not open one; dictation then
	// runs unpersisted.
	session *domain.Session

	paused atomic.Bool

	stateMu sync.Mutex
	state   domain.DictationState

	log       *transcriptLog
	audioDone chan struct{}
}

func (d *activeDictation) setState(state domain.DictationState) {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	d.state = state
}

func (d *activeDictation) getState() domain.DictationState {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	return d.state
}

func (d *activeDictation) sessionID() int64 {
	if d.session == nil {
		return 0
	}
	return d.session.ID
}
