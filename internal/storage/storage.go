// Package storage provides the local response journal.
package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/restmapper/internal/domain"
)

// Store records decoded responses keyed by method and URL.
type Store interface {
	Close() error
	Record(ex domain.Exchange) error
	Last(method, url string) (domain.Exchange, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 24 * time.Hour
	defaultCleanupInterval = time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

func exchangeKey(method, url string) []byte {
	return []byte(strings.ToUpper(method) + " " + url)
}

type noopStore struct{}

func (noopStore) Close() error                 { return nil }
func (noopStore) Record(domain.Exchange) error { return nil }
func (noopStore) Last(string, string) (domain.Exchange, bool, error) {
	return domain.Exchange{}, false, nil
}
