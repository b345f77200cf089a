package worker

import (
	"context"

	"bistro-service/internal/broker"
	"bistro-service/internal/models"
	"bistro-service/internal/util"

	"go.uber.org/zap"
)

// Broadcaster pushes an event to live subscribers
type Broadcaster interface {
	Broadcast(v interface{}) error
}

// NewFeedHandler returns an event handler that forwards every domain event
// to the broadcaster
func NewFeedHandler(feed Broadcaster) *broker.EventHandler {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnOrderPlaced(func(ctx context.Context, e *models.OrderPlacedEvent) error {
		return feed.Broadcast(e)
	})
	eventHandler.OnOrderStatusChanged(func(ctx context.Context, e *models.OrderStatusChangedEvent) error {
		return feed.Broadcast(e)
	})
	eventHandler.OnMenuUpdated(func(ctx context.Context, e *models.MenuUpdatedEvent) error {
		return feed.Broadcast(e)
	})

	return eventHandler
}

// FeedWorker consumes order events from Kafka and feeds the admin dashboards
type FeedWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewFeedWorker creates a new feed worker
func NewFeedWorker(consumer *broker.Consumer, eventHandler *broker.EventHandler) *FeedWorker {
	return &FeedWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start starts the worker
func (w *FeedWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting feed worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *FeedWorker) Stop() error {
	w.logger.Info("Stopping feed worker")
	return w.consumer.Close()
}
