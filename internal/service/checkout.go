package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bistro-service/internal/cart"
	"bistro-service/internal/models"
	"bistro-service/internal/store"
	"bistro-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const idAttempts = 3

// CheckoutRequest carries the customer details collected at checkout
type CheckoutRequest struct {
	CustomerName  string               `json:"customer_name" binding:"required"`
	CustomerPhone string               `json:"customer_phone" binding:"required"`
	PaymentMethod models.PaymentMethod `json:"payment_method" binding:"required"`
}

// CheckoutService turns carts into placed orders
type CheckoutService struct {
	orders    store.OrderRepository
	publisher EventPublisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(orders store.OrderRepository, publisher EventPublisher) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		publisher: publisher,
		now:       time.Now,
		logger:    util.GetLogger(),
	}
}

// Checkout places an order for the cart's contents. The cart is cleared only
// after the order is stored; on any error it is left as it was.
func (s *CheckoutService) Checkout(ctx context.Context, c *cart.Cart, req *CheckoutRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if err := validateCheckout(req); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	var order *models.Order
	err := c.Drain(func(lines []models.CartLine, total int64) error {
		if len(lines) == 0 {
			return models.ErrEmptyCart
		}

		order = &models.Order{
			CustomerName:  strings.TrimSpace(req.CustomerName),
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			Items:         lines,
			Total:         total,
			Status:        models.OrderStatusPending,
			Timestamp:     s.now().UnixMilli(),
			PaymentMethod: req.PaymentMethod,
		}

		return s.appendOrder(ctx, order)
	})
	if err != nil {
		reason := "store_error"
		if errors.Is(err, models.ErrEmptyCart) {
			reason = "empty_cart"
		}
		util.CheckoutFailedTotal.WithLabelValues(reason).Inc()
		return nil, err
	}

	util.OrdersPlacedTotal.WithLabelValues(string(order.PaymentMethod)).Inc()
	util.OrderRevenueTotal.Add(float64(order.Total))
	s.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.Int("lines", len(order.Items)))

	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.String("order_id", order.ID), zap.Error(err))
	}

	return order, nil
}

// appendOrder stores order under a fresh id, drawing another one when the
// id is already taken
func (s *CheckoutService) appendOrder(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < idAttempts; attempt++ {
		order.ID = NewOrderID()
		err = s.orders.AppendOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrDuplicateOrder) {
			break
		}
		s.logger.Warn("Order id collision", zap.String("order_id", order.ID))
	}
	return fmt.Errorf("failed to store order: %w", err)
}

// NewOrderID returns "ORD-" followed by eight upper-case hex digits
func NewOrderID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(id[:8])
}

func validateCheckout(req *CheckoutRequest) error {
	switch {
	case req == nil:
		return fmt.Errorf("missing checkout details: %w", models.ErrInvalidOrder)
	case strings.TrimSpace(req.CustomerName) == "":
		return fmt.Errorf("customer name is required: %w", models.ErrInvalidOrder)
	case strings.TrimSpace(req.CustomerPhone) == "":
		return fmt.Errorf("customer phone is required: %w", models.ErrInvalidOrder)
	case !req.PaymentMethod.Valid():
		return fmt.Errorf("unsupported payment method %q: %w", req.PaymentMethod, models.ErrInvalidOrder)
	}
	return nil
}
