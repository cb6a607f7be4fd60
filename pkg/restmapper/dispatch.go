package restmapper

import (
	"context"
	"fmt"
	"iter"

	"github.com/samvad-hq/restmapper/pkg/hal"
	"github.com/samvad-hq/restmapper/pkg/httpclient"
)

// CallOption configures a single Do invocation.
type CallOption func(*callOptions)

type callOptions struct {
	body    any
	headers map[string]string
	params  map[string]string
	extra   map[string]string
	parse   bool
}

// WithBody sets the request body.
func WithBody(body any) CallOption {
	return func(o *callOptions) { o.body = body }
}

// WithHeaders adds request headers.
func WithHeaders(headers map[string]string) CallOption {
	return func(o *callOptions) {
		for k, v := range headers {
			setKey(&o.headers, k, v)
		}
	}
}

// WithHeader adds one request header.
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) { setKey(&o.headers, key, value) }
}

// WithParams adds query parameters.
func WithParams(params map[string]string) CallOption {
	return func(o *callOptions) {
		for k, v := range params {
			setKey(&o.params, k, v)
		}
	}
}

// WithParam adds one query parameter. Values set this way override
// same-named entries given to WithParams.
func WithParam(key, value string) CallOption {
	return func(o *callOptions) { setKey(&o.extra, key, value) }
}

// WithoutParsing returns the raw response without decoding it.
func WithoutParsing() CallOption {
	return func(o *callOptions) { o.parse = false }
}

func setKey(m *map[string]string, k, v string) {
	if *m == nil {
		*m = make(map[string]string)
	}
	(*m)[k] = v
}

func (o callOptions) queryParams() map[string]string {
	if len(o.params) == 0 && len(o.extra) == 0 {
		return nil
	}
	out := make(map[string]string, len(o.params)+len(o.extra))
	for k, v := range o.params {
		out[k] = v
	}
	for k, v := range o.extra {
		out[k] = v
	}
	return out
}

// ResultKind tells which form a Result takes.
type ResultKind int

const (
	// KindRaw: the body was not decoded; use Response.
	KindRaw ResultKind = iota
	// KindJSON: decoded JSON with no parser for the chain.
	KindJSON
	// KindObject: one value built by the chain's parser.
	KindObject
	// KindSequence: a JSON array to be built lazily by the chain's parser.
	KindSequence
)

func (k ResultKind) String() string {
	switch k {
	case KindRaw:
		return "raw"
	case KindJSON:
		return "json"
	case KindObject:
		return "object"
	case KindSequence:
		return "sequence"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of Do.
type Result struct {
	kind     ResultKind
	resp     httpclient.Response
	json     any
	object   any
	parser   Parser
	elements []any
}

// Kind returns the form of the result.
func (r *Result) Kind() ResultKind { return r.kind }

// Response returns the raw transport response.
func (r *Result) Response() httpclient.Response { return r.resp }

// JSON returns the decoded body, nil for raw results.
func (r *Result) JSON() any { return r.json }

// Object returns the constructed value of a KindObject result.
func (r *Result) Object() any { return r.object }

// Items yields the elements of a KindSequence result. Each element is
// parsed and constructed when it is reached; ranging again starts over.
// Other kinds yield nothing.
func (r *Result) Items() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		if r.kind != KindSequence {
			return
		}
		for _, el := range r.elements {
			if !yield(build(r.parser, el)) {
				return
			}
		}
	}
}

// Len returns the number of elements of a KindSequence result.
func (r *Result) Len() int { return len(r.elements) }

func build(p Parser, value any) (any, error) {
	fields, err := p.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return p.Construct(fields)
}

// Do sends the request for the chain and converts the response.
//
// Without WithoutParsing, a body that decodes as JSON is passed to the
// callback and then either returned as-is or, when a parser is registered
// for a segment of the chain, built into typed values. A body that does not
// decode yields a KindRaw result. Decoded numbers are json.Number values.
// Transport errors are returned unchanged.
func (c *Call) Do(ctx context.Context, opts ...CallOption) (*Result, error) {
	url, err := c.URL()
	if err != nil {
		return nil, err
	}

	o := callOptions{parse: true}
	for _, opt := range opts {
		opt(&o)
	}

	c.log.DebugObj("dispatching request", "request", map[string]any{
		"method": string(c.method),
		"url":    url,
	})
	resp, err := c.session.Do(ctx, httpclient.Request{
		Method:             string(c.method),
		URL:                url,
		Body:               o.body,
		Params:             o.queryParams(),
		Headers:            o.headers,
		Auth:               c.auth,
		InsecureSkipVerify: !c.verifyTLS,
	})
	if err != nil {
		return nil, err
	}

	if !o.parse {
		return &Result{kind: KindRaw, resp: resp}, nil
	}

	decoded, err := hal.DecodeValue(resp.Body())
	if err != nil {
		return &Result{kind: KindRaw, resp: resp}, nil
	}

	c.callback(ctx, CallbackEvent{
		Method:     c.method,
		URL:        url,
		Components: c.Components(),
		StatusCode: resp.StatusCode(),
		Body:       decoded,
	})

	parser, segment, ok := c.parsers.Select(c.components)
	if !ok {
		return &Result{kind: KindJSON, resp: resp, json: decoded}, nil
	}

	if elements, isList := decoded.([]any); isList {
		return &Result{
			kind:     KindSequence,
			resp:     resp,
			json:     decoded,
			parser:   parser,
			elements: elements,
		}, nil
	}

	obj, err := build(parser, decoded)
	if err != nil {
		return nil, fmt.Errorf("build %q response from %s: %w", segment, url, err)
	}
	return &Result{kind: KindObject, resp: resp, json: decoded, object: obj}, nil
}
