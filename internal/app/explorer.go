package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samvad-hq/restmapper/internal/config"
	"github.com/samvad-hq/restmapper/internal/crawler"
	"github.com/samvad-hq/restmapper/internal/domain"
	"github.com/samvad-hq/restmapper/internal/logger"
	"github.com/samvad-hq/restmapper/internal/storage"
	"github.com/samvad-hq/restmapper/pkg/httpclient"
	"github.com/samvad-hq/restmapper/pkg/profiles"
	"github.com/samvad-hq/restmapper/pkg/publishers"
	"github.com/samvad-hq/restmapper/pkg/restmapper"
)

// CallRequest describes one dispatch along a chain of segments.
type CallRequest struct {
	Segments []string
	Method   restmapper.Method
	Body     any
	Params   map[string]string
	Headers  map[string]string
	Raw      bool
}

// Discovery is what the explorer knows about one resource's links.
type Discovery struct {
	URL        string   `json:"url"`
	Rels       []string `json:"rels"`
	Attributes []string `json:"attributes"`
}

// Explorer binds a profile to a mapper whose responses are journaled and
// published.
type Explorer struct {
	profile    profiles.Profile
	mapper     *restmapper.Mapper
	store      storage.Store
	fanout     *publishers.Fanout
	crawlDepth int
	log        logger.Logger
}

// NewExplorer builds an explorer runtime from config files.
func NewExplorer(ctx context.Context, cfg *config.Config, log logger.Logger) (*Explorer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	profileReg, err := profiles.LoadRegistry(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("load profiles registry: %w", err)
	}
	profile, err := profileReg.Resolve(cfg.Profile)
	if err != nil {
		return nil, err
	}
	log.InfoObj("profile selected", "profile_meta", map[string]any{
		"id":           profile.ID,
		"url_template": profile.URLTemplate,
		"verify_tls":   profile.VerifyTLS(),
	})

	fanout, err := loadPublishers(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.JournalType, cfg.JournalPath, storage.Options{
		TTL:             cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"ttl_seconds":              int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	return newExplorer(profile, client, store, fanout, cfg.CrawlDepth, log), nil
}

func loadPublishers(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		log.InfoObj("no publishers file configured", "publishers_meta", map[string]any{"count": 0})
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, p := range enabled {
		summaries = append(summaries, map[string]string{"id": p.ID, "type": p.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

func newExplorer(profile profiles.Profile, client httpclient.Client, store storage.Store, fanout *publishers.Fanout, depth int, log logger.Logger) *Explorer {
	if log == nil {
		log = &logger.NopLogger{}
	}
	e := &Explorer{
		profile:    profile,
		store:      store,
		fanout:     fanout,
		crawlDepth: depth,
		log:        log,
	}
	e.mapper = restmapper.New(profile.URLTemplate,
		restmapper.WithClient(client),
		restmapper.WithVerifyTLS(profile.VerifyTLS()),
		restmapper.WithCallback(e.record),
		restmapper.WithLogger(log),
	).Configure(restmapper.Session{
		Auth:          profile.Credentials(),
		Headers:       profile.Headers,
		Params:        profile.Params,
		URLParameters: profile.URLParameters,
	})
	return e
}

// Mapper returns the configured mapper.
func (e *Explorer) Mapper() *restmapper.Mapper { return e.mapper }

// Profile returns the selected profile.
func (e *Explorer) Profile() profiles.Profile { return e.profile }

// Chain builds the call for segments. Segments that are decimal integers are
// navigated by index.
func (e *Explorer) Chain(method restmapper.Method, segments []string) (*restmapper.Call, error) {
	if len(segments) == 0 {
		return nil, errors.New("at least one segment is required")
	}
	if method != "" {
		e.mapper.WithMethod(method)
	}

	var call *restmapper.Call
	for _, seg := range segments {
		n, err := strconv.Atoi(seg)
		isIndex := err == nil && n >= 0 && strconv.Itoa(n) == seg
		switch {
		case call == nil && isIndex:
			call = e.mapper.Index(n)
		case call == nil:
			call = e.mapper.Resource(seg)
		case isIndex:
			call.Index(n)
		default:
			call.Resource(seg)
		}
	}
	return call, nil
}

// Call dispatches req and returns the converted result.
func (e *Explorer) Call(ctx context.Context, req CallRequest) (*restmapper.Result, error) {
	call, err := e.Chain(req.Method, req.Segments)
	if err != nil {
		return nil, err
	}

	opts := []restmapper.CallOption{
		restmapper.WithParams(req.Params),
		restmapper.WithHeaders(req.Headers),
	}
	if req.Body != nil {
		opts = append(opts, restmapper.WithBody(req.Body))
	}
	if req.Raw {
		opts = append(opts, restmapper.WithoutParsing())
	}
	return call.Do(ctx, opts...)
}

// Discover lists the links of the root (no segments) or of the resource at segments.
func (e *Explorer) Discover(ctx context.Context, segments []string) (Discovery, error) {
	if len(segments) == 0 {
		url, err := e.mapper.URL()
		if err != nil {
			return Discovery{}, err
		}
		links, err := e.mapper.Links(ctx)
		if err != nil {
			return Discovery{}, err
		}
		attrs, err := e.mapper.AvailableAttributes(ctx)
		if err != nil {
			return Discovery{}, err
		}
		return Discovery{URL: url, Rels: links.Rels(), Attributes: attrs}, nil
	}

	call, err := e.Chain(restmapper.GET, segments)
	if err != nil {
		return Discovery{}, err
	}
	d, err := call.Discover(ctx)
	if err != nil {
		return Discovery{}, err
	}
	links, err := d.Links()
	if err != nil {
		return Discovery{}, fmt.Errorf("discover %s: %w", d.URL, err)
	}
	attrs, err := d.AvailableAttributes()
	if err != nil {
		return Discovery{}, err
	}
	return Discovery{URL: d.URL, Rels: links.Rels(), Attributes: attrs}, nil
}

// Crawl walks the resource graph from the root. A non-positive depth uses
// the configured default.
func (e *Explorer) Crawl(ctx context.Context, depth int) (crawler.Report, error) {
	if depth <= 0 {
		depth = e.crawlDepth
	}
	return crawler.NewService(e.profile.RequestDelay(), e.log).Walk(ctx, e.mapper, depth)
}

// Previous returns the last journaled exchange for method and url.
func (e *Explorer) Previous(method restmapper.Method, url string) (domain.Exchange, bool, error) {
	return e.store.Last(string(method), url)
}

// Close releases the journal and publisher connections.
func (e *Explorer) Close() error {
	if e == nil {
		return nil
	}
	var errs []error
	if err := e.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
	}
	return errors.Join(errs...)
}

// record journals and publishes a decoded response.
func (e *Explorer) record(ctx context.Context, evt restmapper.CallbackEvent) {
	body, err := json.Marshal(evt.Body)
	if err != nil {
		e.log.WarnObj("response body re-encode failed", "exchange_error", map[string]any{
			"url":   evt.URL,
			"error": err.Error(),
		})
		return
	}

	ex := domain.Exchange{
		ProfileID:  e.profile.ID,
		Method:     string(evt.Method),
		URL:        evt.URL,
		Path:       evt.Components,
		StatusCode: evt.StatusCode,
		Body:       body,
		ReceivedAt: time.Now().UTC(),
	}
	if err := e.store.Record(ex); err != nil {
		e.log.WarnObj("journal write failed", "exchange_error", map[string]any{
			"url":   evt.URL,
			"error": err.Error(),
		})
	}

	delivered, err := e.fanout.Publish(ctx, publishers.NewEvent(ex))
	if err != nil {
		e.log.WarnObj("exchange publish failed", "exchange_error", map[string]any{
			"url":       evt.URL,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	e.log.DebugObj("exchange recorded", "exchange", map[string]any{
		"method":    ex.Method,
		"url":       ex.URL,
		"status":    ex.StatusCode,
		"delivered": delivered,
	})
}
