package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/support-tracker/internal/events"
	"github.com/spec-kit/support-tracker/internal/persistence"
)

// EventSink receives serialized events.
type EventSink interface {
	Name() string
	Send(ctx context.Context, payload []byte) error
}

// NotificationService logs ticket events and forwards them to the
// configured sinks.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	sinks      []EventSink
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, sinks ...EventSink) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		sinks:      sinks,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handle("TicketCreated"))
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handle("TicketUpdated"))
	n.dispatcher.Subscribe(events.EventTicketFinalized, n.handle("TicketFinalized"))
	n.dispatcher.Subscribe(events.EventSLABreach, n.handleBreach)
}

func (n *NotificationService) handle(name string) events.EventHandler {
	return func(ctx context.Context, event events.Event) error {
		n.logger.Info(name, zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
		n.forward(ctx, event)
		return nil
	}
}

func (n *NotificationService) handleBreach(ctx context.Context, event events.Event) error {
	n.logger.Warn("SLABreach", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.forward(ctx, event)
	return nil
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) {
	if len(n.sinks) == 0 {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal event", zap.String("event_type", string(event.Type)), zap.Error(err))
		return
	}
	for _, sink := range n.sinks {
		if err := sink.Send(ctx, body); err != nil {
			n.logger.Warn("event sink failed",
				zap.String("sink", sink.Name()),
				zap.String("ticket_id", event.TicketID),
				zap.String("event_type", string(event.Type)),
				zap.Error(err))
		}
	}
}

type redisSink struct {
	client  *persistence.Redis
	channel string
}

// NewRedisSink publishes events on a Redis pub/sub channel.
func NewRedisSink(client *persistence.Redis, channel string) EventSink {
	return &redisSink{client: client, channel: channel}
}

func (s *redisSink) Name() string { return "redis" }

func (s *redisSink) Send(ctx context.Context, payload []byte) error {
	return s.client.Publish(ctx, s.channel, payload)
}

type amqpSink struct {
	broker *persistence.AMQP
}

// NewAMQPSink publishes events to the configured AMQP queue.
func NewAMQPSink(broker *persistence.AMQP) EventSink {
	return &amqpSink{broker: broker}
}

func (s *amqpSink) Name() string { return "amqp" }

func (s *amqpSink) Send(ctx context.Context, payload []byte) error {
	return s.broker.Publish(ctx, payload)
}
