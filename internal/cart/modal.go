package cart

import (
	"sync"

	"sarisari/backend/internal/domain"
)

// ProductModal is the quantity selector shown before a product goes into the
// cart. Quantity is always at least one.
type ProductModal struct {
	mu       sync.Mutex
	cart     *Cart
	open     bool
	product  *domain.InventoryItem
	quantity int
}

func NewProductModal(c *Cart) *ProductModal {
	return &ProductModal{cart: c, quantity: 1}
}

func (m *ProductModal) Open(product domain.InventoryItem) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = true
	m.product = &product
	m.quantity = 1
}

func (m *ProductModal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// SetQuantity reports whether n was accepted. Values below one or above the
// selected product's stock are ignored.
func (m *ProductModal) SetQuantity(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.product == nil || n < 1 || n > m.product.Stock {
		return false
	}
	m.quantity = n
	return true
}

// Confirm adds the selection to the cart and closes the modal. It reports
// false and does nothing when no product is selected.
func (m *ProductModal) Confirm() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.product == nil {
		return false
	}
	m.cart.Add(*m.product, m.quantity)
	m.reset()
	return true
}

func (m *ProductModal) State() domain.ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := domain.ModalState{IsOpen: m.open, Quantity: m.quantity}
	if m.product != nil {
		p := *m.product
		state.Product = &p
	}
	return state
}

func (m *ProductModal) reset() {
	m.open = false
	m.product = nil
	m.quantity = 1
}
