package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/restmapper/internal/logger"
	"github.com/samvad-hq/restmapper/pkg/hal"
)

// Node is one resource reached during a walk.
type Node struct {
	Path  []string `json:"path"`
	URL   string   `json:"url"`
	Depth int      `json:"depth"`
	Links int      `json:"links"`
}

// Report summarizes a walk.
type Report struct {
	Root    string `json:"root"`
	Visited []Node `json:"visited"`
	Failed  int    `json:"failed"`
}

// Service walks a HAL resource graph breadth-first.
type Service struct {
	delay time.Duration
	log   Logger
}

// NewService builds a crawler that waits delay between requests.
func NewService(delay time.Duration, log Logger) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{delay: delay, log: log}
}

type pending struct {
	path  []string
	depth int
}

// Walk visits the root and every resource reachable through links under it,
// up to depth levels below the root. Each URL is fetched at most once.
// Per-node failures are logged and joined into the returned error; the
// report covers every node that was fetched successfully.
func (s *Service) Walk(ctx context.Context, nav Navigator, depth int) (Report, error) {
	if s == nil || nav == nil {
		return Report{}, fmt.Errorf("crawler service is not initialized")
	}

	rootURL, err := nav.URL()
	if err != nil {
		return Report{}, fmt.Errorf("resolve root url: %w", err)
	}
	links, err := nav.Links(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("discover root: %w", err)
	}

	report := Report{Root: rootURL}
	report.Visited = append(report.Visited, Node{URL: rootURL, Links: len(links.Hrefs())})
	seen := map[string]bool{rootURL: true}

	var queue []pending
	if depth > 0 {
		for _, p := range childPaths(rootURL, nil, links.Hrefs()) {
			queue = append(queue, pending{path: p, depth: 1})
		}
	}

	var errs []error
	for len(queue) > 0 {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		next := queue[0]
		queue = queue[1:]

		call := nav.Resource(next.path[0])
		for _, seg := range next.path[1:] {
			call.Resource(seg)
		}
		url, err := call.URL()
		if err != nil {
			errs = append(errs, fmt.Errorf("resolve %s: %w", strings.Join(next.path, "/"), err))
			continue
		}
		if seen[url] {
			continue
		}
		seen[url] = true

		if err := s.wait(ctx); err != nil {
			errs = append(errs, err)
			break
		}

		d, err := call.Discover(ctx)
		if err == nil {
			var hrefs []string
			hrefs, err = d.EmbeddedLinksRaw()
			if err == nil {
				report.Visited = append(report.Visited, Node{Path: next.path, URL: url, Depth: next.depth, Links: len(hrefs)})
				s.log.DebugObj("resource visited", "crawl_node", map[string]any{
					"url":   url,
					"depth": next.depth,
					"links": len(hrefs),
				})
				if next.depth < depth {
					for _, p := range childPaths(url, next.path, hrefs) {
						queue = append(queue, pending{path: p, depth: next.depth + 1})
					}
				}
				continue
			}
		}

		report.Failed++
		errs = append(errs, fmt.Errorf("visit %s: %w", url, err))
		s.log.WarnObj("resource visit failed", "crawl_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	}

	s.log.InfoObj("crawl completed", "crawl_report", map[string]any{
		"root":    rootURL,
		"visited": len(report.Visited),
		"failed":  report.Failed,
	})
	return report, errors.Join(errs...)
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// childPaths turns hrefs under base into segment paths appended to parent.
// Hrefs outside base, including siblings that only share its prefix, are
// ignored. Query strings and fragments do not add segments.
func childPaths(base string, parent []string, hrefs []string) [][]string {
	var out [][]string
	for _, href := range hrefs {
		if !under(base, href) {
			continue
		}
		rel := hal.StripBase(base, href)
		rel, _, _ = strings.Cut(rel, "?")
		rel, _, _ = strings.Cut(rel, "#")
		rel = strings.Trim(rel, "/")
		if rel == "" {
			continue
		}
		path := make([]string, 0, len(parent)+1)
		path = append(path, parent...)
		path = append(path, strings.Split(rel, "/")...)
		out = append(out, path)
	}
	return out
}

// under reports whether href is base itself or lies below it on a segment
// boundary.
func under(base, href string) bool {
	if !strings.HasPrefix(href, base) {
		return false
	}
	rest := href[len(base):]
	if rest == "" || strings.HasSuffix(base, "/") {
		return true
	}
	return strings.ContainsRune("/?{#", rune(rest[0]))
}
