package httpclient

import (
	"context"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Status() string
	Header() http.Header
}

// Request describes a single outbound call. Body may be []byte, string, an
// io.Reader (sent as-is) or any other value, which is JSON encoded.
type Request struct {
	Method  string
	URL     string
	Body    any
	Params  map[string]string
	Headers map[string]string
	Auth    *Auth
	// InsecureSkipVerify disables server certificate checks. The zero value
	// verifies.
	InsecureSkipVerify bool
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}
