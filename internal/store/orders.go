package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bistro-service/internal/models"
)

const orderColumns = "id, customer_name, customer_phone, items, total, status, payment_method, created_at"

const appendAttempts = 3

// AppendOrder stores a new order ahead of all existing ones. A concurrent
// append can take the same seq; the insert is then retried. An id that is
// already stored fails with models.ErrDuplicateOrder without a retry.
func (s *Store) AppendOrder(ctx context.Context, order *models.Order) error {
	var err error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		if err = s.appendOrder(ctx, order); err == nil || !isUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (s *Store) appendOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, s.rebind("SELECT COUNT(*) FROM orders WHERE id = ?"), order.ID); err != nil {
		return fmt.Errorf("failed to check order id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateOrder, order.ID)
	}

	var seq int64
	if err := tx.GetContext(ctx, &seq, "SELECT COALESCE(MAX(seq), 0) FROM orders"); err != nil {
		return fmt.Errorf("failed to read order sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO orders (id, seq, customer_name, customer_phone, items, total, status, payment_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		order.ID, seq+1, order.CustomerName, order.CustomerPhone, order.Items,
		order.Total, string(order.Status), string(order.PaymentMethod), order.Timestamp)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListOrders returns all orders, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT "+orderColumns+" FROM orders ORDER BY seq DESC")
	return orders, err
}

// GetOrder retrieves an order by ID
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		s.rebind("SELECT "+orderColumns+" FROM orders WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus updates order status, conditionally when expected is set
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus) error {
	var (
		res sql.Result
		err error
	)
	if expected == "" {
		res, err = s.db.ExecContext(ctx,
			s.rebind("UPDATE orders SET status = ? WHERE id = ?"), string(next), id)
	} else {
		res, err = s.db.ExecContext(ctx,
			s.rebind("UPDATE orders SET status = ? WHERE id = ? AND status = ?"), string(next), id, string(expected))
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetOrder(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: %s", models.ErrStatusConflict, id)
}
