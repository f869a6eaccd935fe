package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/observability"
)

// EventSink receives events for realtime fan-out.
type EventSink interface {
	Deliver(event events.Event)
}

// NotificationService forwards domain events to connected clients.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       EventSink
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sink EventSink, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.Types() {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(_ context.Context, event events.Event) error {
	n.logger.Info("complaint event",
		zap.String("event", string(event.Type)),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("room", event.Room),
		zap.String("actor_id", event.ActorID))
	n.metrics.EventPublished(string(event.Type))
	if n.sink != nil {
		n.sink.Deliver(event)
	}
	return nil
}
