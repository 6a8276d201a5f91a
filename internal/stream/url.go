package stream

import (
	"net/url"
	"strings"
)

// SessionURL derives the websocket endpoint for a topic from the service
// origin: https maps to wss, http to ws, and the topic becomes the final
// path element under /ws/.
func SessionURL(base, topic string) string {
	base = strings.TrimSpace(base)
	if strings.HasPrefix(base, "https://") {
		base = "wss://" + strings.TrimPrefix(base, "https://")
	} else if strings.HasPrefix(base, "http://") {
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return strings.TrimRight(base, "/") + "/ws/" + url.PathEscape(topic)
}
