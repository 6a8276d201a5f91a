package usecase

import (
	"errors"
	"fmt"
	"io"

	"scribewire/internal/domain"
	"scribewire/internal/ports"
)

// pumpAudioFrames forwards microphone frames to the session client until the
// capture session ends. Sends are best-effort: while the transport is down
// the client drops them and frames are simply lost. While paused, frames are
// read and discarded so the recorder pipe does not fill.
func pumpAudioFrames(
	dictation *activeDictation,
	client ports.SessionClient,
	chunkSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := dictation.audio.Read(buf)
		if n > 0 && !dictation.paused.Load() {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			client.SendAudio(frame)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}
