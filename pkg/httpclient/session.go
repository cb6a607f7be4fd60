package httpclient

import "context"

// Session holds request defaults shared by every call made through it.
// Per-request headers and params win over the session's; the session's auth
// is used when the request carries none.
type Session struct {
	Auth    *Auth
	Headers map[string]string
	Params  map[string]string

	client Client
}

// NewSession builds a session over client with copies of the given defaults.
func NewSession(client Client, auth *Auth, headers, params map[string]string) *Session {
	return &Session{
		Auth:    auth,
		Headers: copyMap(headers),
		Params:  copyMap(params),
		client:  client,
	}
}

// Do merges session defaults into req and sends it.
func (s *Session) Do(ctx context.Context, req Request) (Response, error) {
	req.Headers = mergeMaps(s.Headers, req.Headers)
	req.Params = mergeMaps(s.Params, req.Params)
	if req.Auth.IsZero() {
		req.Auth = s.Auth
	}
	return s.client.Do(ctx, req)
}

func copyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func mergeMaps(base, override map[string]string) map[string]string {
	if len(base) == 0 {
		return copyMap(override)
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
