package restmapper

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/samvad-hq/restmapper/pkg/hal"
	"github.com/samvad-hq/restmapper/pkg/httpclient"
)

const defaultTimeout = 30 * time.Second

// Callback receives every successfully decoded response body before typed
// parsing. Whatever it does is a side effect; the dispatcher ignores it.
type Callback func(ctx context.Context, evt CallbackEvent)

// CallbackEvent describes a decoded response.
type CallbackEvent struct {
	Method     Method
	URL        string
	Components []string
	StatusCode int
	Body       any
}

func noopCallback(context.Context, CallbackEvent) {}

// Session is the per-invocation configuration applied by Configure.
type Session struct {
	Auth          *httpclient.Auth
	Headers       map[string]string
	Params        map[string]string
	URLParameters map[string]string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithParsers sets the per-segment parser registry.
func WithParsers(p *Parsers) Option {
	return func(m *Mapper) { m.parsers = p }
}

// WithCallback sets the decoded-body callback.
func WithCallback(cb Callback) Option {
	return func(m *Mapper) { m.callback = cb }
}

// WithVerifyTLS sets whether requests verify server certificates. Defaults to true.
func WithVerifyTLS(verify bool) Option {
	return func(m *Mapper) { m.verifyTLS = verify }
}

// WithClient sets the transport.
func WithClient(c httpclient.Client) Option {
	return func(m *Mapper) { m.client = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l Logger) Option {
	return func(m *Mapper) { m.log = l }
}

// Mapper is the root of a resource graph. It is not safe for concurrent
// use: Configure and WithMethod mutate shared state.
type Mapper struct {
	urlTemplate string
	parsers     *Parsers
	callback    Callback
	verifyTLS   bool
	client      httpclient.Client
	log         Logger

	session   *httpclient.Session
	urlParams map[string]string
	pending   Method
}

// New builds a mapper for urlTemplate with an empty session.
func New(urlTemplate string, opts ...Option) *Mapper {
	m := &Mapper{
		urlTemplate: urlTemplate,
		verifyTLS:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.parsers == nil {
		m.parsers = NewParsers()
	}
	if m.callback == nil {
		m.callback = noopCallback
	}
	if m.client == nil {
		m.client = httpclient.NewRestyClient(defaultTimeout)
	}
	m.log = ensureLogger(m.log)
	m.session = httpclient.NewSession(m.client, nil, nil, nil)
	m.urlParams = map[string]string{}
	return m
}

func (m *Mapper) String() string {
	return fmt.Sprintf("<RestMapper url=%s>", m.urlTemplate)
}

// Configure replaces the session with a fresh one built from s and stores
// the URL parameters used by the next chains. Earlier settings are dropped.
func (m *Mapper) Configure(s Session) *Mapper {
	m.session = httpclient.NewSession(m.client, s.Auth, s.Headers, s.Params)
	m.urlParams = copyParams(s.URLParameters)
	return m
}

// WithMethod selects the verb for the next navigation step only.
func (m *Mapper) WithMethod(method Method) *Mapper {
	m.pending = method
	return m
}

// Method returns the pending verb, or GET when none is selected.
func (m *Mapper) Method() Method {
	if m.pending == "" {
		return GET
	}
	return m.pending
}

// Resource starts a chain at segment name, consuming the pending method.
func (m *Mapper) Resource(name string) *Call {
	method := m.Method()
	m.pending = ""
	return &Call{
		urlTemplate: m.urlTemplate,
		components:  []string{name},
		method:      method,
		urlParams:   copyParams(m.urlParams),
		parsers:     m.parsers,
		callback:    m.callback,
		verifyTLS:   m.verifyTLS,
		session:     m.session,
		log:         m.log,
	}
}

// Index starts a chain at the segment for n.
func (m *Mapper) Index(n int) *Call {
	return m.Resource(strconv.Itoa(n))
}

// URL resolves the bare template against the stored parameters.
func (m *Mapper) URL() (string, error) {
	return resolveURL(m.urlTemplate, m.urlParams, nil)
}

// Main fetches the root resource and returns its body.
func (m *Mapper) Main(ctx context.Context) (string, error) {
	url, err := m.URL()
	if err != nil {
		return "", err
	}
	resp, err := m.session.Do(ctx, httpclient.Request{
		Method:             string(m.Method()),
		URL:                url,
		InsecureSkipVerify: !m.verifyTLS,
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

// Links returns the root resource's _links.
func (m *Mapper) Links(ctx context.Context) (hal.Links, error) {
	body, err := m.Main(ctx)
	if err != nil {
		return nil, err
	}
	res, err := hal.Parse([]byte(body))
	if err != nil {
		return nil, err
	}
	return res.RequireLinks()
}

// AvailableAttributes lists the root links as segments relative to the root
// URL, without templated suffixes. The result is a hint for interactive use.
func (m *Mapper) AvailableAttributes(ctx context.Context) ([]string, error) {
	url, err := m.URL()
	if err != nil {
		return nil, err
	}
	links, err := m.Links(ctx)
	if err != nil {
		return nil, err
	}

	hrefs := links.Hrefs()
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		out = append(out, hal.StripBase(url, href))
	}
	return out, nil
}
