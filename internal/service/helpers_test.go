package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bistro-service/internal/models"
	"bistro-service/internal/store"
)

type recordingPublisher struct {
	mu            sync.Mutex
	placed        []string
	statusChanges []models.OrderStatus
	menuUpdates   []int
	err           error
}

func (p *recordingPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, order.ID)
	return p.err
}

func (p *recordingPublisher) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to models.OrderStatus) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusChanges = append(p.statusChanges, to)
	return p.err
}

func (p *recordingPublisher) PublishMenuUpdated(ctx context.Context, itemCount int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.menuUpdates = append(p.menuUpdates, itemCount)
	return p.err
}

var errStoreDown = errors.New("store down")

// failingOrders rejects every append
type failingOrders struct {
	*store.MemoryStore
}

func (f failingOrders) AppendOrder(ctx context.Context, order *models.Order) error {
	return errStoreDown
}

func sampleMenu() []models.MenuItem {
	return []models.MenuItem{
		{ID: "1", Name: "Butter Chicken & Naan", Description: "Tender chicken in a rich tomato and butter gravy", Price: 350, Category: "Main Course", Available: true},
		{ID: "2", Name: "Paneer Tikka", Description: "Grilled cottage cheese with spices", Price: 280, Category: "Starters", Available: true},
		{ID: "5", Name: "Masala Chai", Description: "Spiced tea with ginger", Price: 50, Category: "Drinks", Available: true},
		{ID: "7", Name: "Saffron Kulfi", Description: "Frozen milk dessert", Price: 90, Category: "Dessert", Available: false},
	}
}

// collidingOrders reports the first collisions appends as duplicate ids
type collidingOrders struct {
	*store.MemoryStore
	collisions int
	tried      []string
}

func (c *collidingOrders) AppendOrder(ctx context.Context, order *models.Order) error {
	c.tried = append(c.tried, order.ID)
	if len(c.tried) <= c.collisions {
		return fmt.Errorf("%w: %s", models.ErrDuplicateOrder, order.ID)
	}
	return c.MemoryStore.AppendOrder(ctx, order)
}
