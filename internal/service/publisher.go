package service

import (
	"context"

	"bistro-service/internal/broker"
	"bistro-service/internal/models"
)

// EventPublisher emits domain events. Failures are logged by callers and
// never fail the operation that produced the event.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, orderID string, from, to models.OrderStatus) error
	PublishMenuUpdated(ctx context.Context, itemCount int) error
}

var _ EventPublisher = (*broker.EventPublisher)(nil)
