package publishers

import (
	"encoding/json"
	"time"

	"github.com/samvad-hq/restmapper/internal/domain"
)

// Event represents the payload published downstream for one API exchange.
type Event struct {
	ProfileID  string          `json:"profile_id"`
	Method     string          `json:"method"`
	URL        string          `json:"url"`
	Path       []string        `json:"path,omitempty"`
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// NewEvent constructs an Event from a recorded exchange.
func NewEvent(ex domain.Exchange) Event {
	received := ex.ReceivedAt
	if received.IsZero() {
		received = time.Now().UTC()
	}
	return Event{
		ProfileID:  ex.ProfileID,
		Method:     ex.Method,
		URL:        ex.URL,
		Path:       ex.Path,
		StatusCode: ex.StatusCode,
		Body:       ex.Body,
		ReceivedAt: received,
	}
}

// attributes returns the routing metadata attached to every sink message.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"profile_id": e.ProfileID,
		"method":     e.Method,
	}
}
