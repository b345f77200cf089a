package store

import (
	"context"
	"fmt"
	"sync"

	"bistro-service/internal/models"
)

// MemoryStore keeps everything in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	menu   []models.MenuItem
	orders []*models.Order
	admins map[string]models.AdminCredential
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{admins: make(map[string]models.AdminCredential)}
}

func (m *MemoryStore) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.MenuItem{}, m.menu...), nil
}

func (m *MemoryStore) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menu = append([]models.MenuItem{}, items...)
	return nil
}

func (m *MemoryStore) UpsertMenuItem(ctx context.Context, item models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.menu {
		if m.menu[i].ID == item.ID {
			m.menu[i] = item
			return nil
		}
	}
	m.menu = append(m.menu, item)
	return nil
}

func (m *MemoryStore) DeleteMenuItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.menu {
		if m.menu[i].ID == id {
			m.menu = append(m.menu[:i:i], m.menu[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrMenuItemNotFound, id)
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o.Clone())
	}
	return out, nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if o := m.find(id); o != nil {
		return o.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", models.ErrOrderNotFound, id)
}

func (m *MemoryStore) AppendOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.find(order.ID) != nil {
		return fmt.Errorf("%w: %s", models.ErrDuplicateOrder, order.ID)
	}
	m.orders = append([]*models.Order{order.Clone()}, m.orders...)
	return nil
}

func (m *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, expected, next models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.find(id)
	if o == nil {
		return fmt.Errorf("%w: %s", models.ErrOrderNotFound, id)
	}
	if expected != "" && o.Status != expected {
		return fmt.Errorf("%w: %s", models.ErrStatusConflict, id)
	}
	o.Status = next
	return nil
}

func (m *MemoryStore) FindAdmin(ctx context.Context, username string) (*models.AdminCredential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cred, ok := m.admins[username]; ok {
		return &cred, nil
	}
	return nil, nil
}

func (m *MemoryStore) CreateAdmin(ctx context.Context, cred models.AdminCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.admins[cred.Username]; ok {
		return fmt.Errorf("%w: %s", models.ErrAdminExists, cred.Username)
	}
	m.admins[cred.Username] = cred
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) find(id string) *models.Order {
	for _, o := range m.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}
