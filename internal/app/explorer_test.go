package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/restmapper/internal/config"
	"github.com/samvad-hq/restmapper/internal/storage"
	"github.com/samvad-hq/restmapper/pkg/httpclient"
	"github.com/samvad-hq/restmapper/pkg/profiles"
	"github.com/samvad-hq/restmapper/pkg/publishers"
	"github.com/samvad-hq/restmapper/pkg/restmapper"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishers.Event
}

func (r *recordingPublisher) ID() string   { return "rec" }
func (r *recordingPublisher) Type() string { return "memory" }
func (r *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

type apiState struct {
	mu      sync.Mutex
	version int
	auth    string
}

func newAPIServer(t *testing.T, state *apiState) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state.mu.Lock()
		state.auth = r.Header.Get("Authorization")
		version := state.version
		state.mu.Unlock()

		base := "http://" + r.Host + "/v1"
		switch r.URL.Path {
		case "/v1/":
			fmt.Fprintf(w, `{"_links":{"self":{"href":"%[1]s/"},"orders":{"href":"%[1]s/orders"}}}`, base)
		case "/v1/orders":
			fmt.Fprintf(w, `{"_links":{"self":{"href":"%[1]s/orders"}},"_embedded":{"items":[{"_links":{"self":{"href":"%[1]s/orders/0"}}}]}}`, base)
		case "/v1/orders/0":
			fmt.Fprintf(w, `{"_links":{"self":{"href":"%[1]s/orders/0"}},"id":0,"version":%[2]d}`, base, version)
		case "/v1/ledger":
			_, _ = w.Write([]byte(`{"id":9007199254740993}`))
		case "/v1/ping":
			_, _ = w.Write([]byte("pong"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestExplorer(t *testing.T, srv *httptest.Server, pub publishers.Publisher) *Explorer {
	t.Helper()
	store, err := storage.NewStore("bbolt", filepath.Join(t.TempDir(), "journal.db"), storage.Options{TTL: time.Hour})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	profile := profiles.Profile{
		ID:             "orders",
		URLTemplate:    srv.URL + "/{version}/{path}",
		URLParameters:  map[string]string{"version": "v1"},
		Auth:           profiles.AuthConfig{Type: profiles.AuthBearer, Token: "tkn"},
		RequestDelayMs: 1,
	}
	e := newExplorer(profile, httpclient.NewRestyClient(5*time.Second), store, publishers.NewFanout([]publishers.Publisher{pub}), 2, nil)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestExplorerCallJournalsAndPublishes(t *testing.T) {
	state := &apiState{version: 1}
	srv := newAPIServer(t, state)
	pub := &recordingPublisher{}
	e := newTestExplorer(t, srv, pub)

	res, err := e.Call(context.Background(), CallRequest{Segments: []string{"orders", "0"}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Kind() != restmapper.KindJSON {
		t.Fatalf("expected json result, got %s", res.Kind())
	}
	if state.auth != "Bearer tkn" {
		t.Fatalf("expected bearer credentials, got %q", state.auth)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(pub.events))
	}
	evt := pub.events[0]
	if evt.ProfileID != "orders" || evt.URL != srv.URL+"/v1/orders/0" || evt.Method != "GET" {
		t.Fatalf("unexpected event %#v", evt)
	}

	prev, ok, err := e.Previous(restmapper.GET, srv.URL+"/v1/orders/0")
	if err != nil || !ok {
		t.Fatalf("expected journaled exchange, got ok=%v err=%v", ok, err)
	}
	if prev.StatusCode != http.StatusOK || len(prev.Path) != 2 {
		t.Fatalf("unexpected journal entry %#v", prev)
	}
}

func TestExplorerCallRawSkipsCallback(t *testing.T) {
	srv := newAPIServer(t, &apiState{})
	pub := &recordingPublisher{}
	e := newTestExplorer(t, srv, pub)

	res, err := e.Call(context.Background(), CallRequest{Segments: []string{"ping"}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Kind() != restmapper.KindRaw || string(res.Response().Body()) != "pong" {
		t.Fatalf("expected raw pong, got %s", res.Kind())
	}
	if len(pub.events) != 0 {
		t.Fatalf("expected no events for raw response")
	}
}

func TestExplorerChainRequiresSegments(t *testing.T) {
	srv := newAPIServer(t, &apiState{})
	e := newTestExplorer(t, srv, &recordingPublisher{})

	if _, err := e.Chain(restmapper.GET, nil); err == nil {
		t.Fatalf("expected error for empty chain")
	}
	call, err := e.Chain(restmapper.DELETE, []string{"orders", "3", "items"})
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if call.Method() != restmapper.DELETE || call.String() != "<RestMapperCall DELETE orders/3/items>" {
		t.Fatalf("unexpected call %s", call)
	}
	if next := e.Mapper().Method(); next != restmapper.GET {
		t.Fatalf("expected pending method consumed, got %s", next)
	}
}

func TestExplorerDiscover(t *testing.T) {
	srv := newAPIServer(t, &apiState{})
	e := newTestExplorer(t, srv, &recordingPublisher{})

	root, err := e.Discover(context.Background(), nil)
	if err != nil {
		t.Fatalf("Discover root: %v", err)
	}
	if root.URL != srv.URL+"/v1/" || len(root.Rels) != 2 {
		t.Fatalf("unexpected root discovery %#v", root)
	}

	orders, err := e.Discover(context.Background(), []string{"orders"})
	if err != nil {
		t.Fatalf("Discover orders: %v", err)
	}
	if len(orders.Attributes) != 1 || orders.Attributes[0] != "/0" {
		t.Fatalf("unexpected attributes %#v", orders.Attributes)
	}
}

func TestExplorerCrawl(t *testing.T) {
	srv := newAPIServer(t, &apiState{})
	e := newTestExplorer(t, srv, &recordingPublisher{})

	report, err := e.Crawl(context.Background(), 0)
	if err != nil {
		t.Fatalf("Crawl: %v", err)
	}
	if len(report.Visited) != 3 {
		t.Fatalf("expected root, orders and orders/0, got %#v", report.Visited)
	}
}

func TestNewExplorerFromConfigFiles(t *testing.T) {
	srv := newAPIServer(t, &apiState{})
	dir := t.TempDir()
	profilesPath := filepath.Join(dir, "profiles.yaml")
	raw := fmt.Sprintf(`
profiles:
  - id: local
    name: Local
    url_template: "%s/{version}/{path}"
    url_parameters:
      version: v1
`, srv.URL)
	if err := os.WriteFile(profilesPath, []byte(raw), 0o644); err != nil {
		t.Fatalf("write profiles: %v", err)
	}

	cfg := &config.Config{
		ProfilesFile: profilesPath,
		JournalType:  "none",
		HTTPTimeout:  5 * time.Second,
		CrawlDepth:   1,
	}
	e, err := NewExplorer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewExplorer: %v", err)
	}
	defer e.Close()

	if e.Profile().ID != "local" {
		t.Fatalf("unexpected profile %#v", e.Profile())
	}
	if _, err := e.Call(context.Background(), CallRequest{Segments: []string{"orders"}}); err != nil {
		t.Fatalf("Call: %v", err)
	}
}

func TestExplorerJournalKeepsLargeIntegers(t *testing.T) {
	srv := newAPIServer(t, &apiState{})
	pub := &recordingPublisher{}
	e := newTestExplorer(t, srv, pub)

	if _, err := e.Call(context.Background(), CallRequest{Segments: []string{"ledger"}}); err != nil {
		t.Fatalf("Call: %v", err)
	}

	prev, ok, err := e.Previous(restmapper.GET, srv.URL+"/v1/ledger")
	if err != nil || !ok {
		t.Fatalf("expected journaled exchange, got ok=%v err=%v", ok, err)
	}
	if string(prev.Body) != `{"id":9007199254740993}` {
		t.Fatalf("journal body lost precision: %s", prev.Body)
	}
	if len(pub.events) != 1 || string(pub.events[0].Body) != `{"id":9007199254740993}` {
		t.Fatalf("published body lost precision: %#v", pub.events)
	}
}
