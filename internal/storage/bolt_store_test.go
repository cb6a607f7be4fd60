package storage

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samvad-hq/restmapper/internal/domain"
)

func TestBoltStoreRecordsAndExpiresExchanges(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		TTL:             1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/journal.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	_, found, err := store.Last("GET", "https://api.test/orders")
	if err != nil || found {
		t.Fatalf("expected empty journal, found=%v err=%v", found, err)
	}

	ex := domain.Exchange{
		ProfileID:  "shop",
		Method:     "GET",
		URL:        "https://api.test/orders",
		Path:       []string{"orders"},
		StatusCode: 200,
		Body:       json.RawMessage(`{"total":2}`),
		ReceivedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.Record(ex); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, found, err := store.Last("get", "https://api.test/orders")
	if err != nil || !found {
		t.Fatalf("expected recorded exchange, found=%v err=%v", found, err)
	}
	if got.ProfileID != "shop" || got.StatusCode != 200 || string(got.Body) != `{"total":2}` {
		t.Fatalf("unexpected exchange %#v", got)
	}
	if !got.ReceivedAt.Equal(ex.ReceivedAt) {
		t.Fatalf("received_at mismatch %v != %v", got.ReceivedAt, ex.ReceivedAt)
	}

	if _, found, _ := store.Last("POST", "https://api.test/orders"); found {
		t.Fatalf("method must be part of the key")
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	_, found, err = store.Last("GET", "https://api.test/orders")
	if err != nil {
		t.Fatalf("Last after expiry: %v", err)
	}
	if found {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.Exchange{URL: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if _, found, _ := store.Last("GET", "x"); found {
		t.Fatalf("noop store must not find anything")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
