package domain

import (
	"encoding/json"
	"time"
)

// Domain contains core models shared by the app packages.

// Exchange is one decoded response as seen by the mapper callback.
type Exchange struct {
	ProfileID  string          `json:"profile_id" msgpack:"profile_id"`
	Method     string          `json:"method" msgpack:"method"`
	URL        string          `json:"url" msgpack:"url"`
	Path       []string        `json:"path" msgpack:"path"`
	StatusCode int             `json:"status_code" msgpack:"status_code"`
	Body       json.RawMessage `json:"body" msgpack:"body"`
	ReceivedAt time.Time       `json:"received_at" msgpack:"received_at"`
}
