// Package cart holds the per-session checkout state: the cart lines and the
// quantity selector used to add products to it. Nothing here is persisted.
package cart

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"sarisari/backend/internal/domain"
)

const defaultImage = "📦"

type Cart struct {
	mu    sync.Mutex
	lines []domain.CartLine
}

func New() *Cart {
	return &Cart{}
}

// Add puts quantity units of item into the cart, clamped to the item's stock
// as seen at call time. A line whose clamped quantity is below one is removed
// or never created.
func (c *Cart) Add(item domain.InventoryItem, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(item.ID)
	if idx >= 0 {
		next := min(c.lines[idx].Quantity+quantity, item.Stock)
		if next < 1 {
			c.lines = slices.Delete(c.lines, idx, idx+1)
			return
		}
		c.lines[idx].Quantity = next
		return
	}

	qty := min(quantity, item.Stock)
	if qty < 1 {
		return
	}

	image := defaultImage
	if item.Image != nil && *item.Image != "" {
		image = *item.Image
	}
	c.lines = append(c.lines, domain.CartLine{
		ID:       item.ID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: qty,
		Image:    image,
		Stock:    item.Stock,
	})
}

// UpdateQuantity sets the line's quantity verbatim. Unlike Add it does not
// clamp to stock. A quantity below one removes the line.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return
	}
	if quantity < 1 {
		c.lines = slices.Delete(c.lines, idx, idx+1)
		return
	}
	c.lines[idx].Quantity = quantity
}

func (c *Cart) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx := c.indexOf(id); idx >= 0 {
		c.lines = slices.Delete(c.lines, idx, idx+1)
	}
}

func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

func (c *Cart) TotalPrice() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, line := range c.lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) View() domain.CartView {
	return domain.CartView{
		Lines:      c.Lines(),
		TotalPrice: c.TotalPrice(),
		TotalItems: c.TotalItems(),
	}
}

func (c *Cart) indexOf(id string) int {
	return slices.IndexFunc(c.lines, func(line domain.CartLine) bool {
		return line.ID == id
	})
}
