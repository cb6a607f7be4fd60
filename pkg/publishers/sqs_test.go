package publishers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	return &sqs.SendMessageOutput{}, nil
}

func TestSQSPublisherSendsEventBody(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", typ: TypeSQS, queueURL: "https://sqs.local/q", client: client, log: noopLogger{}}

	evt := Event{ProfileID: "orders", Method: "POST", URL: "https://api.example.com/orders", StatusCode: 201, Body: json.RawMessage(`{"id":7}`)}
	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs.local/q" {
		t.Fatalf("unexpected queue url %q", got)
	}

	var decoded Event
	if err := json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if decoded.StatusCode != 201 || string(decoded.Body) != `{"id":7}` {
		t.Fatalf("unexpected payload %#v", decoded)
	}
	if got := aws.ToString(client.input.MessageAttributes["profile_id"].StringValue); got != "orders" {
		t.Fatalf("unexpected profile_id attribute %q", got)
	}
}

func TestSQSPublisherPlaceholdersEmptyAttributes(t *testing.T) {
	client := &fakeSQSClient{}
	pub := &sqsPublisher{id: "queue", typ: TypeSQS, queueURL: "q", client: client, log: noopLogger{}}

	if err := pub.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.MessageAttributes["profile_id"].StringValue); got != "-" {
		t.Fatalf("expected placeholder attribute, got %q", got)
	}
}
