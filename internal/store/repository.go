package store

import (
	"context"

	"bistro-service/internal/models"
)

// CatalogRepository owns menu items. UpsertMenuItem keeps an existing
// item's position and appends new ones; DeleteMenuItem fails with
// models.ErrMenuItemNotFound for an unknown id.
type CatalogRepository interface {
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	ReplaceMenu(ctx context.Context, items []models.MenuItem) error
	UpsertMenuItem(ctx context.Context, item models.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error
}

// OrderRepository owns placed orders. ListOrders returns newest first.
type OrderRepository interface {
	ListOrders(ctx context.Context) ([]models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	AppendOrder(ctx context.Context, order *models.Order) error
	// UpdateOrderStatus sets next. A non-empty expected makes it a
	// compare-and-swap that fails with models.ErrStatusConflict.
	UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus) error
}

// AdminRepository owns admin credentials. FindAdmin returns nil, nil when
// the username is unknown.
type AdminRepository interface {
	FindAdmin(ctx context.Context, username string) (*models.AdminCredential, error)
	CreateAdmin(ctx context.Context, cred models.AdminCredential) error
}

// Repository is a complete backing store
type Repository interface {
	CatalogRepository
	OrderRepository
	AdminRepository
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Repository = (*Store)(nil)
	_ Repository = (*MemoryStore)(nil)
)
