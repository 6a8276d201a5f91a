package usecase

import (
	"testing"

	"scribewire/internal/domain"
)

func TestTranscriptLogRendersSpeakerLabels(t *testing.T) {
	t.Parallel()

	log := newTranscriptLog()
	log.Add(domain.Segment{Speaker: "0", SpeakerRole: "clinician", Text: "How long has this been going on?"})
	log.Add(domain.Segment{Speaker: "1", Text: "About a week."})
	log.Add(domain.Segment{Text: "  "})

	want := "clinician: How long has this been going on?\n1: About a week."
	if got := log.Raw(); got != want {
		t.Fatalf("unexpected raw note: %q", got)
	}
	if log.Count() != 2 {
		t.Fatalf("count = %d", log.Count())
	}
}

func TestTranscriptLogKeepsTrailingPartial(t *testing.T) {
	t.Parallel()

	log := newTranscriptLog()
	log.Add(domain.Segment{Text: "First sentence."})
	log.SetPartial("and then")

	if got := log.Raw(); got != "First sentence.\nand then" {
		t.Fatalf("unexpected raw note: %q", got)
	}

	// A finalized line supersedes the pending partial.
	log.Add(domain.Segment{Text: "and then some."})
	if got := log.Raw(); got != "First sentence.\nand then some." {
		t.Fatalf("unexpected raw note: %q", got)
	}
}

func TestTranscriptLogPartialOnly(t *testing.T) {
	t.Parallel()

	log := newTranscriptLog()
	log.SetPartial("half a thought")

	if got := log.Raw(); got != "half a thought" {
		t.Fatalf("unexpected raw note: %q", got)
	}
}

func TestTranscriptLogReset(t *testing.T) {
	t.Parallel()

	log := newTranscriptLog()
	log.Add(domain.Segment{Text: "gone"})
	log.SetPartial("also gone")
	log.Reset()

	if got := log.Raw(); got != "" {
		t.Fatalf("expected empty note, got %q", got)
	}
	if log.Count() != 0 {
		t.Fatalf("count = %d", log.Count())
	}
}
