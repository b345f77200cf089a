package cart

import (
	"sync"

	"bistro-service/internal/models"
)

// DefaultUnit is used when an item is added without a unit label
const DefaultUnit = "Standard"

// Cart holds one customer's selected items. Lines are keyed by
// (item id, selected unit); a line never has quantity below 1.
type Cart struct {
	mu    sync.Mutex
	lines []models.CartLine
	open  bool
}

// New creates an empty cart
func New() *Cart {
	return &Cart{}
}

// Add adds one unit of item. unitPrice <= 0 falls back to the item's base price.
func (c *Cart) Add(item models.MenuItem, unit string, unitPrice int64) {
	if unit == "" {
		unit = DefaultUnit
	}
	if unitPrice <= 0 {
		unitPrice = item.Price
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.open = true
	if i := c.index(item.ID, unit); i >= 0 {
		c.lines[i].Quantity++
		return
	}

	item.Price = unitPrice
	c.lines = append(c.lines, models.CartLine{
		MenuItem:     item,
		Quantity:     1,
		SelectedUnit: unit,
	})
}

// UpdateQuantity adjusts a line by delta, removing it when it reaches zero
func (c *Cart) UpdateQuantity(itemID, unit string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(itemID, unit)
	if i < 0 {
		return
	}
	q := c.lines[i].Quantity + delta
	if q <= 0 {
		c.removeAt(i)
		return
	}
	c.lines[i].Quantity = q
}

// Remove deletes the matching line
func (c *Cart) Remove(itemID, unit string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(itemID, unit); i >= 0 {
		c.removeAt(i)
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Total returns the sum of price times quantity
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total()
}

// Count returns the number of units in the cart
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the cart lines
func (c *Cart) Lines() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// IsOpen reports whether the cart drawer should be shown
func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// SetOpen shows or hides the cart drawer
func (c *Cart) SetOpen(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = open
}

// Drain runs fn with a snapshot of the lines and their total while holding
// the cart lock. The cart is cleared only if fn returns nil.
func (c *Cart) Drain(fn func(lines []models.CartLine, total int64) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := fn(c.snapshot(), c.total()); err != nil {
		return err
	}
	c.lines = nil
	return nil
}

func (c *Cart) index(itemID, unit string) int {
	for i := range c.lines {
		if c.lines[i].ID == itemID && c.lines[i].SelectedUnit == unit {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

func (c *Cart) total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) snapshot() []models.CartLine {
	out := make([]models.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}
