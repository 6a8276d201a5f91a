package stream

import (
	"encoding/json"

	"github.com/gorilla/websocket"
)

// StartSession asks the service to begin transcribing.
func (c *Client) StartSession() { c.send(command{Type: "start"}) }

// StopSession asks the service to finish transcribing.
func (c *Client) StopSession() { c.send(command{Type: "stop"}) }

// PauseSession suspends transcription without dropping the session.
func (c *Client) PauseSession() { c.send(command{Type: "pause"}) }

// ResumeSession resumes a paused session.
func (c *Client) ResumeSession() { c.send(command{Type: "resume"}) }

// ResetTranscript clears the service-side transcript state.
func (c *Client) ResetTranscript() { c.send(command{Type: "reset"}) }

// SetPatient attaches a patient context to the session.
func (c *Client) SetPatient(name string) { c.send(command{Type: "set_patient", Name: name}) }

// GenerateSOAP requests a SOAP note from the downstream processor.
func (c *Client) GenerateSOAP() { c.send(command{Type: "generate_soap"}) }

// Ping sends a keepalive; the service answers with a pong event.
func (c *Client) Ping() { c.send(command{Type: "ping"}) }

// SendAudio forwards one raw binary audio frame as-is. The service owns
// framing and boundary detection.
func (c *Client) SendAudio(frame []byte) {
	if len(frame) == 0 {
		return
	}
	c.sendRaw(websocket.BinaryMessage, frame)
}

func (c *Client) send(cmd command) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		c.log.Warn("dropping unencodable command", "type", cmd.Type, "error", err)
		return
	}
	c.sendRaw(websocket.TextMessage, payload)
}

// sendRaw writes to the transport only while it is open; anything else is
// silently dropped, never queued.
func (c *Client) sendRaw(messageType int, payload []byte) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		c.log.Debug("send skipped, transport not open")
		return
	}

	c.writeMu.Lock()
	err := conn.WriteMessage(messageType, payload)
	c.writeMu.Unlock()
	if err != nil {
		c.log.Warn("send failed", "error", err)
	}
}
