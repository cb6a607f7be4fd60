package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/restmapper/internal/logger"
	"github.com/samvad-hq/restmapper/pkg/restmapper"
)

// Poller repeats one call on an interval and reports when the decoded
// response differs from the previous journaled one.
type Poller struct {
	explorer *Explorer
	req      CallRequest
	interval time.Duration
	log      logger.Logger
}

// NewPoller builds a poller for req.
func NewPoller(e *Explorer, req CallRequest, interval time.Duration, log logger.Logger) *Poller {
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Poller{explorer: e, req: req, interval: interval, log: log}
}

// Run polls until the context is cancelled. A failure of the first poll is
// returned; later failures are logged.
func (p *Poller) Run(ctx context.Context) error {
	if p == nil || p.explorer == nil {
		return fmt.Errorf("poller is not initialized")
	}
	if p.interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	p.log.InfoObj("poll loop starting", "poller_state", map[string]any{
		"profile_id": p.explorer.Profile().ID,
		"segments":   strings.Join(p.req.Segments, "/"),
		"interval":   p.interval.String(),
	})

	if _, err := p.PollOnce(ctx); err != nil {
		return fmt.Errorf("initial poll: %w", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("poll loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if _, err := p.PollOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// PollOnce performs a single call and reports whether its decoded body
// changed since the previous journaled exchange. Raw responses and first
// observations count as unchanged.
func (p *Poller) PollOnce(ctx context.Context) (bool, error) {
	call, err := p.explorer.Chain(p.req.Method, p.req.Segments)
	if err != nil {
		return false, err
	}
	url, err := call.URL()
	if err != nil {
		return false, err
	}
	method := call.Method()

	prev, seen, err := p.explorer.Previous(method, url)
	if err != nil {
		p.log.WarnObj("journal lookup failed", "poll_error", map[string]any{
			"url":   url,
			"error": err.Error(),
		})
	}

	start := time.Now()
	res, err := p.explorer.Call(ctx, p.req)
	if err != nil {
		return false, err
	}

	changed := false
	if seen && res.Kind() != restmapper.KindRaw {
		current, err := json.Marshal(res.JSON())
		if err == nil {
			changed = !bytes.Equal(current, prev.Body)
		}
	}

	p.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"method":     string(method),
		"url":        url,
		"status":     res.Response().StatusCode(),
		"kind":       res.Kind().String(),
		"changed":    changed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return changed, nil
}
