package usecase

import (
	"strings"
	"sync"

	"scribewire/internal/domain"
)

// transcriptLog collects finalized, speaker-attributed lines for the note.
type transcriptLog struct {
	mu          sync.Mutex
	lines       []domain.Segment
	lastPartial string
}

func newTranscriptLog() *transcriptLog {
	return &transcriptLog{}
}

func (l *transcriptLog) Add(seg domain.Segment) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if strings.TrimSpace(seg.Text) == "" {
		return
	}
	l.lines = append(l.lines, seg)
	l.lastPartial = ""
}

func (l *transcriptLog) SetPartial(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastPartial = strings.TrimSpace(text)
}

func (l *transcriptLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
	l.lastPartial = ""
}

func (l *transcriptLog) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lines)
}

// Raw renders the collected lines as note text. Lines keep speaker labels
// when the service attributed them. A trailing unfinalized partial is kept
// so an abrupt stop does not lose the last spoken phrase.
func (l *transcriptLog) Raw() string {
	l.mu.Lock()
	defer l.mu.Unlock()

	rendered := make([]string, 0, len(l.lines)+1)
	for _, seg := range l.lines {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		label := seg.SpeakerRole
		if label == "" {
			label = seg.Speaker
		}
		if label != "" {
			rendered = append(rendered, label+": "+text)
		} else {
			rendered = append(rendered, text)
		}
	}

	if l.lastPartial != "" {
		rendered = append(rendered, l.lastPartial)
	}

	return strings.TrimSpace(strings.Join(rendered, "\n"))
}
