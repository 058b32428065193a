package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/domain"
	"github.com/vuhk2k6/web-order-sub000/internal/domains/checkout/ports"
)

// SQSAPI is the subset of the SQS client the publisher calls.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

var _ ports.EventPublisher = (*SQSPublisher)(nil)

// SQSPublisher sends order events to an SQS queue as JSON.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) PublishOrderPlaced(ctx context.Context, event domain.OrderPlaced) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	message := string(body)
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &p.queueURL,
		MessageBody: &message,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_name": stringAttr(event.EventName()),
			"order_type": stringAttr(event.OrderType),
			"order_id":   stringAttr(event.OrderID),
		},
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	dataType := "String"
	return sqstypes.MessageAttributeValue{DataType: &dataType, StringValue: &v}
}
