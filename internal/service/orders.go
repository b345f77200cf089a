package service

import (
	"context"
	"errors"
	"fmt"

	"bistro-service/internal/models"
	"bistro-service/internal/store"
	"bistro-service/internal/util"

	"go.uber.org/zap"
)

// StatusPolicy controls which status changes SetStatus accepts
type StatusPolicy string

const (
	// PolicyStrict enforces the transition table and reports unknown orders
	PolicyStrict StatusPolicy = "strict"
	// PolicyLenient accepts any status and ignores unknown orders
	PolicyLenient StatusPolicy = "lenient"
)

// ParseStatusPolicy maps a config value to a policy, defaulting to strict
func ParseStatusPolicy(s string) StatusPolicy {
	if StatusPolicy(s) == PolicyLenient {
		return PolicyLenient
	}
	return PolicyStrict
}

// AllStatuses disables status filtering in List
const AllStatuses = "All"

// OrderService handles the admin side of placed orders
type OrderService struct {
	repo      store.OrderRepository
	publisher EventPublisher
	policy    StatusPolicy
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repo store.OrderRepository, publisher EventPublisher, policy StatusPolicy) *OrderService {
	return &OrderService{
		repo:      repo,
		publisher: publisher,
		policy:    policy,
		logger:    util.GetLogger(),
	}
}

// List returns orders newest first, optionally limited to one status
func (s *OrderService) List(ctx context.Context, status string) ([]models.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if status == "" || status == AllStatuses {
		return orders, nil
	}

	filtered := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if string(o.Status) == status {
			filtered = append(filtered, o)
		}
	}
	return filtered, nil
}

// Get returns a single order
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// SetStatus moves an order to next. Setting the current status again is a
// no-op. Under the lenient policy an unknown id returns nil, nil.
func (s *OrderService) SetStatus(ctx context.Context, id string, next models.OrderStatus) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.SetStatus")
	defer span.End()

	if !next.Valid() {
		util.OrderTransitionsRejectedTotal.WithLabelValues("unknown_status").Inc()
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTransition, next)
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if s.policy == PolicyLenient && errors.Is(err, models.ErrOrderNotFound) {
			s.logger.Debug("Ignoring status change for unknown order", zap.String("order_id", id))
			return nil, nil
		}
		return nil, err
	}

	current := order.Status
	if current == next {
		return order, nil
	}

	var expected models.OrderStatus
	if s.policy == PolicyStrict {
		if err := models.ValidateTransition(current, next); err != nil {
			util.OrderTransitionsRejectedTotal.WithLabelValues("illegal_transition").Inc()
			return nil, err
		}
		expected = current
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, expected, next); err != nil {
		switch {
		case errors.Is(err, models.ErrStatusConflict):
			util.OrderTransitionsRejectedTotal.WithLabelValues("conflict").Inc()
		case s.policy == PolicyLenient && errors.Is(err, models.ErrOrderNotFound):
			return nil, nil
		}
		return nil, err
	}

	util.OrderStatusChangesTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info("Order status changed",
		zap.String("order_id", id),
		zap.String("from", string(current)),
		zap.String("to", string(next)))

	if err := s.publisher.PublishOrderStatusChanged(ctx, id, current, next); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.String("order_id", id), zap.Error(err))
	}

	order.Status = next
	return order, nil
}
