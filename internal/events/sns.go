package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/logger"
)

const eventTypePromptCreated = "prompt.created"

// SNSPublisher publishes events to a single SNS topic, discriminated by
// an event_type message attribute.
type SNSPublisher struct {
	client   *sns.Client
	topicARN string
}

func NewSNSPublisher(client *sns.Client, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) PublishPromptCreated(ctx context.Context, ev domain.PromptCreatedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	logger.ExternalServiceCall("sns", "publish", "event_type", eventTypePromptCreated, "prompt_id", ev.PromptID)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventTypePromptCreated),
			},
		},
	})
	logger.ExternalServiceResult("sns", "publish", err, "prompt_id", ev.PromptID)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
