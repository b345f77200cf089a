package redisclient

import (
	"context"
	"encoding/json"
	"fmt"

	"bistro-service/internal/models"
	"bistro-service/internal/store"

	"github.com/go-redis/redis/v8"
)

var _ store.Repository = (*Client)(nil)

// ListMenu returns the catalog
func (c *Client) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	err := getJSON(ctx, c.rdb, KeyMenu, &items)
	return items, err
}

// ReplaceMenu overwrites the catalog
func (c *Client) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	if items == nil {
		items = []models.MenuItem{}
	}
	return setJSON(ctx, c.rdb, KeyMenu, items)
}

// UpsertMenuItem replaces the item with the same id or appends item
func (c *Client) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	return c.update(ctx, KeyMenu, func(tx *redis.Tx) (interface{}, error) {
		items := []models.MenuItem{}
		if err := getJSON(ctx, tx, KeyMenu, &items); err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = item
				return items, nil
			}
		}
		return append(items, item), nil
	})
}

// DeleteMenuItem removes one item from the catalog
func (c *Client) DeleteMenuItem(ctx context.Context, id string) error {
	return c.update(ctx, KeyMenu, func(tx *redis.Tx) (interface{}, error) {
		items := []models.MenuItem{}
		if err := getJSON(ctx, tx, KeyMenu, &items); err != nil {
			return nil, err
		}
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", models.ErrMenuItemNotFound, id)
	})
}

// ListOrders returns all orders, newest first
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	err := getJSON(ctx, c.rdb, KeyOrders, &orders)
	return orders, err
}

// GetOrder retrieves an order by ID
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	orders, err := c.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, id)
}

// AppendOrder atomically prepends the order to the orders array. The script
// refuses an id that is already stored.
func (c *Client) AppendOrder(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to encode order: %w", err)
	}

	added, err := c.prependScript.Run(ctx, c.rdb, []string{KeyOrders}, data, order.ID).Int()
	if err != nil {
		return fmt.Errorf("prepend order script failed: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateOrder, order.ID)
	}
	return nil
}

// UpdateOrderStatus updates order status, conditionally when expected is set
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus) error {
	return c.update(ctx, KeyOrders, func(tx *redis.Tx) (interface{}, error) {
		orders := []models.Order{}
		if err := getJSON(ctx, tx, KeyOrders, &orders); err != nil {
			return nil, err
		}
		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			if expected != "" && orders[i].Status != expected {
				return nil, fmt.Errorf("%w: %s", models.ErrStatusConflict, id)
			}
			orders[i].Status = next
			return orders, nil
		}
		return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, id)
	})
}

// FindAdmin retrieves an admin by username
func (c *Client) FindAdmin(ctx context.Context, username string) (*models.AdminCredential, error) {
	admins := []models.AdminCredential{}
	if err := getJSON(ctx, c.rdb, KeyAdmins, &admins); err != nil {
		return nil, err
	}
	for i := range admins {
		if admins[i].Username == username {
			return &admins[i], nil
		}
	}
	return nil, nil
}

// CreateAdmin appends a new admin credential
func (c *Client) CreateAdmin(ctx context.Context, cred models.AdminCredential) error {
	return c.update(ctx, KeyAdmins, func(tx *redis.Tx) (interface{}, error) {
		admins := []models.AdminCredential{}
		if err := getJSON(ctx, tx, KeyAdmins, &admins); err != nil {
			return nil, err
		}
		for _, a := range admins {
			if a.Username == cred.Username {
				return nil, fmt.Errorf("%w: %s", models.ErrAdminExists, cred.Username)
			}
		}
		return append(admins, cred), nil
	})
}
