package leads

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsSender interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// QueuePublisher sends each record as a JSON message to SQS so downstream CRM
// workers can pick it up.
type QueuePublisher struct {
	client   sqsSender
	queueURL string
}

// NewQueuePublisher creates a publisher around the provided SQS client.
func NewQueuePublisher(client *sqs.Client, queueURL string) *QueuePublisher {
	if client == nil {
		panic("leads: SQS client cannot be nil")
	}
	return newQueuePublisher(client, queueURL)
}

func newQueuePublisher(client sqsSender, queueURL string) *QueuePublisher {
	if queueURL == "" {
		panic("leads: SQS queueURL cannot be empty")
	}
	return &QueuePublisher{client: client, queueURL: queueURL}
}

func (q *QueuePublisher) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("leads: marshal record: %w", err)
	}
	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"disposition": {
				DataType:    aws.String("String"),
				StringValue: aws.String(dispositionAttr(rec.Disposition)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("leads: failed to send SQS message: %w", err)
	}
	return nil
}

// SQS rejects empty string attribute values.
func dispositionAttr(d string) string {
	if d == "" {
		return "unknown"
	}
	return d
}
