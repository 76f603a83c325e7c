package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventCallStarted = "call.started"
	EventCallEnded   = "call.ended"
)

// CallEvent is published whenever a call is started or ended from the dashboard.
type CallEvent struct {
	Type       string    `json:"type"`
	LeadID     string    `json:"leadId"`
	CallSID    string    `json:"callSid,omitempty"`
	LeadName   string    `json:"leadName"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Duration   int       `json:"duration"`
	OccurredAt time.Time `json:"occurredAt"`
}

type CallEventPublisher interface {
	PublishCallEvent(ctx context.Context, event CallEvent) error
}

// channelPublisher is satisfied by *amqp.Channel.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	ch channelPublisher
}

func NewProducer(ch channelPublisher) *RabbitMQProducer {
	return &RabbitMQProducer{ch: ch}
}

func (p *RabbitMQProducer) PublishCallEvent(ctx context.Context, event CallEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal call event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish call event: %w", err)
	}
	return nil
}
