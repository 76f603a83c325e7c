package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xavierca1/leaddialer/internal/logger"
)

// SummaryNotifier delivers the summary of a finished call (e.g. by email).
type SummaryNotifier interface {
	SendCallSummary(event CallEvent) error
}

// consumer is satisfied by *amqp.Channel.
type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	channel  consumer
	notifier SummaryNotifier
	logger   *zap.Logger
}

// NewWorker builds a call-event consumer. notifier may be nil, in which case
// events are only logged.
func NewWorker(ch consumer, notifier SummaryNotifier, log *zap.Logger) *Worker {
	return &Worker{
		channel:  ch,
		notifier: notifier,
		logger:   logger.OrNop(log).Named("call_event_worker"),
	}
}

// Start consumes queueName until ctx is done or the delivery channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.logger.Info("worker waiting for call events", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event CallEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.logger.Error("malformed call event", zap.Error(err))
		// no requeue: a broken payload would block the queue
		d.Nack(false, false)
		return
	}

	if err := w.processMessage(ctx, event); err != nil {
		w.logger.Error("call event failed",
			zap.String("type", event.Type),
			zap.String("lead_id", event.LeadID),
			zap.Error(err))
		d.Nack(false, false)
		return
	}

	d.Ack(false)
}

func (w *Worker) processMessage(_ context.Context, event CallEvent) error {
	switch event.Type {
	case EventCallStarted:
		w.logger.Info("call started",
			zap.String("lead_id", event.LeadID),
			zap.String("call_sid", event.CallSID))
		return nil

	case EventCallEnded:
		w.logger.Info("call ended",
			zap.String("lead_id", event.LeadID),
			zap.String("call_sid", event.CallSID),
			zap.Int("duration", event.Duration))
		if w.notifier == nil {
			return nil
		}
		return w.notifier.SendCallSummary(event)

	default:
		// unknown types are acked so they don't pile up in the DLQ
		w.logger.Warn("unknown call event type", zap.String("type", event.Type))
		return nil
	}
}
