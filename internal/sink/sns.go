package sink

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSNotifier mirrors engine events to an SNS topic for out-of-band
// notification delivery (email, SMS) when cloud alerts are enabled.
type SNSNotifier struct {
	svc      *sns.Client
	topicArn string
	ctx      context.Context
}

// NewSNSNotifier creates a notifier for the given region and topic.
func NewSNSNotifier(region, topicArn string) (*SNSNotifier, error) {
	ctx := context.Background()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &SNSNotifier{
		svc:      sns.NewFromConfig(cfg),
		topicArn: topicArn,
		ctx:      ctx,
	}, nil
}

// SendEvent publishes one engine event to the topic.
func (n *SNSNotifier) SendEvent(kind, body string) error {
	input := &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(fmt.Sprintf("Tariffwatch: %s", kind)),
		Message:  aws.String(body),
	}

	if _, err := n.svc.Publish(n.ctx, input); err != nil {
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}
	return nil
}
