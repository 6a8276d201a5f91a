package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"scribewire/internal/ports"
)

// payload is the JSON body posted for each artifact.
type payload struct {
	SessionID int64           `json:"session_id"`
	Kind      string          `json:"kind"`
	Body      json.RawMessage `json:"body"`
	SentAt    time.Time       `json:"sent_at"`
}

// HTTPSink posts artifacts to a configured webhook URL. An empty URL
// disables delivery.
type HTTPSink struct {
	webhookURL string
	client     *http.Client
}

func NewHTTPSink(webhookURL string) ports.ArtifactSink {
	return &HTTPSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPSink) Send(ctx context.Context, sessionID int64, kind string, body []byte) error {
	if s.webhookURL == "" {
		return nil
	}

	if !json.Valid(body) {
		// Plain-text notes are wrapped so the body stays valid JSON.
		quoted, err := json.Marshal(string(body))
		if err != nil {
			return err
		}
		body = quoted
	}

	b, err := json.Marshal(payload{
		SessionID: sessionID,
		Kind:      kind,
		Body:      body,
		SentAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
