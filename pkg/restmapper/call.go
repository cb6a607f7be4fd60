package restmapper

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/samvad-hq/restmapper/pkg/hal"
	"github.com/samvad-hq/restmapper/pkg/httpclient"
)

// Call accumulates path segments for one request. Navigation methods
// mutate the call and return it, so a chain is built on a single value.
// Do does not change the segments or the method; a call may be sent again.
type Call struct {
	urlTemplate string
	components  []string
	method      Method
	urlParams   map[string]string
	auth        *httpclient.Auth
	parsers     *Parsers
	callback    Callback
	verifyTLS   bool
	session     *httpclient.Session
	log         Logger
}

// Resource appends segment name.
func (c *Call) Resource(name string) *Call {
	c.components = append(c.components, name)
	return c
}

// Index appends the segment for n.
func (c *Call) Index(n int) *Call {
	return c.Resource(strconv.Itoa(n))
}

// Segment appends the string form of v.
func (c *Call) Segment(v any) *Call {
	return c.Resource(fmt.Sprint(v))
}

// WithMethod rebinds the verb. Only the last binding before Do matters.
func (c *Call) WithMethod(method Method) *Call {
	c.method = method
	return c
}

// WithAuth overrides the session credentials for this call.
func (c *Call) WithAuth(auth *httpclient.Auth) *Call {
	c.auth = auth
	return c
}

// Method returns the bound verb.
func (c *Call) Method() Method { return c.method }

// Components returns a copy of the accumulated segments.
func (c *Call) Components() []string {
	out := make([]string, len(c.components))
	copy(out, c.components)
	return out
}

func (c *Call) String() string {
	return fmt.Sprintf("<RestMapperCall %s %s>", c.method, strings.Join(c.components, "/"))
}

// URL materializes the chain into a request URL.
func (c *Call) URL() (string, error) {
	return resolveURL(c.urlTemplate, c.urlParams, c.components)
}

// Main sends the bound method without a body and returns the response body.
func (c *Call) Main(ctx context.Context) (string, error) {
	_, body, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Call) fetch(ctx context.Context) (string, []byte, error) {
	url, err := c.URL()
	if err != nil {
		return "", nil, err
	}
	resp, err := c.session.Do(ctx, httpclient.Request{
		Method:             string(c.method),
		URL:                url,
		Auth:               c.auth,
		InsecureSkipVerify: !c.verifyTLS,
	})
	if err != nil {
		return url, nil, err
	}
	return url, resp.Body(), nil
}

// Discover fetches the resource once and returns a snapshot for link discovery.
func (c *Call) Discover(ctx context.Context) (*Discovery, error) {
	url, body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	res, err := hal.Parse(body)
	if err != nil {
		return nil, err
	}
	return &Discovery{URL: url, Resource: res}, nil
}

// Links returns the resource's _links; it fails when the member is absent.
func (c *Call) Links(ctx context.Context) (hal.Links, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return d.Links()
}

// EmbeddedValues returns the resource's embedded collections.
func (c *Call) EmbeddedValues(ctx context.Context) ([][]hal.Resource, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return d.EmbeddedValues(), nil
}

// EmbeddedLinksRaw returns the hrefs reachable from this resource.
func (c *Call) EmbeddedLinksRaw(ctx context.Context) ([]string, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return d.EmbeddedLinksRaw()
}

// EmbeddedLinks returns the reachable hrefs relative to this call's URL.
func (c *Call) EmbeddedLinks(ctx context.Context) ([]string, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return d.EmbeddedLinks()
}

// AvailableAttributes returns EmbeddedLinks with leading numeric segments
// written in index notation. The result is a hint for interactive use.
func (c *Call) AvailableAttributes(ctx context.Context) ([]string, error) {
	d, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return d.AvailableAttributes()
}

// Discovery is a decoded resource together with the URL it was fetched from.
type Discovery struct {
	URL      string
	Resource *hal.Resource
}

// Links returns _links or hal.ErrNoLinks.
func (d *Discovery) Links() (hal.Links, error) {
	return d.Resource.RequireLinks()
}

// EmbeddedValues returns the _embedded collections, empty when absent.
func (d *Discovery) EmbeddedValues() [][]hal.Resource {
	return d.Resource.EmbeddedValues()
}

// EmbeddedLinksRaw is the union of every embedded item's link hrefs and
// every top-level href under the resource URL.
func (d *Discovery) EmbeddedLinksRaw() ([]string, error) {
	links, err := d.Links()
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, href := range d.Resource.EmbeddedHrefs() {
		set[href] = struct{}{}
	}
	for _, href := range links.Hrefs() {
		if strings.HasPrefix(href, d.URL) {
			set[href] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

// EmbeddedLinks strips the resource URL and templated suffixes from
// EmbeddedLinksRaw, dropping empty results.
func (d *Discovery) EmbeddedLinks() ([]string, error) {
	raw, err := d.EmbeddedLinksRaw()
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(raw))
	for _, href := range raw {
		if link := hal.StripBase(d.URL, href); link != "" {
			set[link] = struct{}{}
		}
	}
	return sortedKeys(set), nil
}

// AvailableAttributes rewrites EmbeddedLinks into navigation hints.
func (d *Discovery) AvailableAttributes() ([]string, error) {
	links, err := d.EmbeddedLinks()
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(links))
	for _, link := range links {
		set[hal.IndexNotation(link)] = struct{}{}
	}
	return sortedKeys(set), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
