package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Category      string          `json:"category"`
	Image         *string         `json:"image,omitempty"`
	Barcode       *string         `json:"barcode,omitempty"`
	MinStockLevel int             `json:"minStockLevel"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsLowStock reports whether the item is at or below its reorder threshold.
func (i InventoryItem) IsLowStock() bool {
	return i.Stock <= i.MinStockLevel
}

type InventoryItemCreate struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	Category      string          `json:"category"`
	Image         *string         `json:"image,omitempty"`
	Barcode       *string         `json:"barcode,omitempty"`
	MinStockLevel int             `json:"minStockLevel"`
}

type InventoryItemUpdate struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Image         *string          `json:"image,omitempty"`
	Barcode       *string          `json:"barcode,omitempty"`
	MinStockLevel *int             `json:"minStockLevel,omitempty"`
}

// CartLine is a snapshot of an item taken when it was added to a cart.
type CartLine struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
	Stock    int             `json:"stock"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Sale struct {
	CartLine
	Date time.Time `json:"date"`
}

type DebtStatus string

const (
	DebtStatusUnpaid DebtStatus = "Unpaid"
	DebtStatusPaid   DebtStatus = "Paid"
)

// DayLayout is the calendar-day format used by Debt.Date and Debt.DueDate.
const DayLayout = "2006-01-02"

type Debt struct {
	ID          string          `json:"id"`
	Debtor      string          `json:"debtor"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	DueDate     string          `json:"dueDate"`
	Description string          `json:"description"`
	Status      DebtStatus      `json:"status"`
	PaidDate    *time.Time      `json:"paidDate,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type DebtCreate struct {
	Debtor      string          `json:"debtor"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	DueDate     string          `json:"dueDate"`
	Description string          `json:"description"`
	Status      DebtStatus      `json:"status"`
	PaidDate    *time.Time      `json:"paidDate,omitempty"`
}

// DebtUpdate has no Date field: the origination date is fixed at creation.
type DebtUpdate struct {
	Debtor      *string          `json:"debtor,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	DueDate     *string          `json:"dueDate,omitempty"`
	Description *string          `json:"description,omitempty"`
	Status      *DebtStatus      `json:"status,omitempty"`
	PaidDate    *time.Time       `json:"paidDate,omitempty"`
}

type CheckoutResult struct {
	Skipped    bool            `json:"skipped"`
	Lines      int             `json:"lines"`
	TotalItems int             `json:"totalItems"`
	Total      decimal.Decimal `json:"total"`
	Message    string          `json:"message"`
	At         time.Time       `json:"at"`
}

type ModalState struct {
	IsOpen   bool           `json:"isOpen"`
	Product  *InventoryItem `json:"product"`
	Quantity int            `json:"quantity"`
}

type CartView struct {
	Lines      []CartLine      `json:"lines"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	TotalItems int             `json:"totalItems"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
	SessionID   string `json:"sessionId"`
	ExpiresAt   string `json:"expiresAt"`
}

type Actor struct {
	Username  string
	Role      string
	SessionID string
}

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// FormatPrice renders an amount with two decimals, the way receipts show it.
func FormatPrice(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
