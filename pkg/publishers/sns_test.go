package publishers

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNSPublisherPublishesWithAttributes(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{id: "topic", topicARN: "arn:aws:sns:us-east-1:123:exchanges", client: client, log: noopLogger{}}

	err := pub.Publish(context.Background(), Event{ProfileID: "orders", Method: "GET", URL: "https://api.example.com/orders"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if client.input == nil {
		t.Fatalf("expected publish input")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:us-east-1:123:exchanges" {
		t.Fatalf("unexpected topic arn %q", got)
	}
	attr, ok := client.input.MessageAttributes["profile_id"]
	if !ok || aws.ToString(attr.StringValue) != "orders" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("unexpected profile_id attribute %#v", attr)
	}
	if got := aws.ToString(client.input.MessageAttributes["method"].StringValue); got != "GET" {
		t.Fatalf("unexpected method attribute %q", got)
	}
}

func TestSNSPublisherWrapsErrors(t *testing.T) {
	boom := errors.New("throttled")
	pub := &snsPublisher{id: "topic", topicARN: "arn", client: &fakeSNSClient{err: boom}, log: noopLogger{}}

	err := pub.Publish(context.Background(), Event{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
