package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeKafkaWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeKafkaWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeKafkaWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherKeysByURL(t *testing.T) {
	w := &fakeKafkaWriter{}
	pub := &kafkaPublisher{id: "stream", writer: w, log: noopLogger{}}

	if err := pub.Publish(context.Background(), Event{ProfileID: "orders", Method: "GET", URL: "https://api.example.com/orders/1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	if got := string(w.msgs[0].Key); got != "https://api.example.com/orders/1" {
		t.Fatalf("unexpected key %q", got)
	}

	var found bool
	for _, h := range w.msgs[0].Headers {
		if h.Key == "profile_id" && string(h.Value) == "orders" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing profile_id header in %#v", w.msgs[0].Headers)
	}

	if err := NewFanout([]Publisher{pub}).Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !w.closed {
		t.Fatalf("expected writer to be closed")
	}
}

func TestKafkaPublisherWrapsWriteErrors(t *testing.T) {
	boom := errors.New("leader not available")
	pub := &kafkaPublisher{id: "stream", writer: &fakeKafkaWriter{err: boom}, log: noopLogger{}}

	if err := pub.Publish(context.Background(), Event{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNewKafkaPublisherRequiresConfig(t *testing.T) {
	if _, err := newKafkaPublisher(context.Background(), PublisherConfig{ID: "k", Type: TypeKafka}, nil); err == nil {
		t.Fatalf("expected error for missing kafka block")
	}
}
