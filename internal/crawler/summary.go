package crawler

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/restmapper/pkg/httpclient"
)

const (
	maxHTMLBodyBytes = 1 << 20 // 1 MiB
	maxSnippetBytes  = 512
)

// Summarize describes a response whose body is not JSON. HTML pages are
// reduced to their title and description; other bodies to a short snippet.
func Summarize(resp httpclient.Response) string {
	if resp == nil {
		return ""
	}
	body := resp.Body()
	status := fmt.Sprintf("%d", resp.StatusCode())
	if s := strings.TrimSpace(resp.Status()); s != "" {
		status = s
	}

	if isHTML(resp.Header().Get("Content-Type"), body) {
		if len(body) > maxHTMLBodyBytes {
			body = body[:maxHTMLBodyBytes]
		}
		if meta, err := parseMeta(body); err == nil && (meta.Title != "" || meta.Description != "") {
			return strings.TrimSpace(fmt.Sprintf("%s html: %s %s", status, meta.Title, meta.Description))
		}
	}

	return strings.TrimSpace(fmt.Sprintf("%s %s", status, snippet(body)))
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetBytes {
		s = s[:maxSnippetBytes] + "..."
	}
	return s
}

func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			strings.TrimSpace(doc.Find("title").First().Text()),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
	}, nil
}

type pageMeta struct {
	Title       string
	Description string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
