package crawler

import (
	"net/http"
	"strings"
	"testing"
)

type stubResponse struct {
	body   []byte
	status int
	header http.Header
}

func (s stubResponse) Body() []byte        { return s.body }
func (s stubResponse) StatusCode() int     { return s.status }
func (s stubResponse) Status() string      { return "" }
func (s stubResponse) Header() http.Header { return s.header }

func TestParseMetaPrefersOGTags(t *testing.T) {
	html := []byte(`
<html>
  <head>
    <title>Fallback</title>
    <meta property="og:title" content="OG Title">
    <meta name="description" content="Plain Desc">
  </head>
</html>`)

	meta, err := parseMeta(html)
	if err != nil {
		t.Fatalf("parseMeta: %v", err)
	}
	if meta.Title != "OG Title" || meta.Description != "Plain Desc" {
		t.Fatalf("unexpected meta %#v", meta)
	}
}

func TestSummarizeHTMLUsesTitle(t *testing.T) {
	resp := stubResponse{
		status: 502,
		header: http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		body:   []byte(`<html><head><title>Bad Gateway</title></head><body>upstream down</body></html>`),
	}

	got := Summarize(resp)
	if got != "502 html: Bad Gateway" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestSummarizeTruncatesPlainBodies(t *testing.T) {
	resp := stubResponse{status: 200, header: http.Header{}, body: []byte(strings.Repeat("x", 600))}

	got := Summarize(resp)
	if !strings.HasPrefix(got, "200 xxx") || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected summary %q", got)
	}
	if len(got) != len("200 ")+maxSnippetBytes+len("...") {
		t.Fatalf("unexpected summary length %d", len(got))
	}
}

func TestSummarizeSniffsHTMLWithoutContentType(t *testing.T) {
	resp := stubResponse{status: 200, header: http.Header{}, body: []byte(`<!DOCTYPE html><html><head><title>Docs</title></head></html>`)}

	if got := Summarize(resp); got != "200 html: Docs" {
		t.Fatalf("unexpected summary %q", got)
	}
}
