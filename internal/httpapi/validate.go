package httpapi

import (
	"fmt"
	"strings"
	"time"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/store"
)

const defaultDebtTerm = 14 * 24 * time.Hour

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", store.ErrInvalidInput, fmt.Sprintf(format, args...))
}

func validateItemCreate(req *domain.InventoryItemCreate) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		return invalid("name is required")
	}
	if req.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if req.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if req.MinStockLevel < 0 {
		return invalid("minStockLevel must not be negative")
	}
	return nil
}

func validateItemUpdate(req *domain.InventoryItemUpdate) error {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return invalid("name must not be empty")
		}
		req.Name = &name
	}
	if req.Price != nil && req.Price.IsNegative() {
		return invalid("price must not be negative")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return invalid("stock must not be negative")
	}
	if req.MinStockLevel != nil && *req.MinStockLevel < 0 {
		return invalid("minStockLevel must not be negative")
	}
	return nil
}

// validateCartAdd defaults an omitted quantity to one unit. Removing units
// goes through the cart line routes, never through add.
func validateCartAdd(req *cartAddRequest) error {
	if req.Quantity < 0 {
		return invalid("quantity must not be negative")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return nil
}

// normalizeDebtCreate fills the form defaults: today's date, a due date two
// weeks out and Unpaid status.
func normalizeDebtCreate(req *domain.DebtCreate, now time.Time) error {
	req.Debtor = strings.TrimSpace(req.Debtor)
	if req.Debtor == "" {
		return invalid("debtor is required")
	}
	if req.Amount.IsNegative() {
		return invalid("amount must not be negative")
	}

	if strings.TrimSpace(req.Date) == "" {
		req.Date = now.Format(domain.DayLayout)
	}
	date, err := time.Parse(domain.DayLayout, req.Date)
	if err != nil {
		return invalid("date must be YYYY-MM-DD")
	}
	if strings.TrimSpace(req.DueDate) == "" {
		req.DueDate = date.Add(defaultDebtTerm).Format(domain.DayLayout)
	} else if _, err := time.Parse(domain.DayLayout, req.DueDate); err != nil {
		return invalid("dueDate must be YYYY-MM-DD")
	}

	switch req.Status {
	case "":
		req.Status = domain.DebtStatusUnpaid
	case domain.DebtStatusUnpaid, domain.DebtStatusPaid:
	default:
		return invalid("status must be Unpaid or Paid")
	}
	if req.Status == domain.DebtStatusPaid && req.PaidDate == nil {
		paid := now
		req.PaidDate = &paid
	}
	return nil
}

func validateDebtUpdate(req *domain.DebtUpdate) error {
	if req.Debtor != nil {
		debtor := strings.TrimSpace(*req.Debtor)
		if debtor == "" {
			return invalid("debtor must not be empty")
		}
		req.Debtor = &debtor
	}
	if req.Amount != nil && req.Amount.IsNegative() {
		return invalid("amount must not be negative")
	}
	if req.DueDate != nil {
		if _, err := time.Parse(domain.DayLayout, *req.DueDate); err != nil {
			return invalid("dueDate must be YYYY-MM-DD")
		}
	}
	if req.Status != nil && *req.Status != domain.DebtStatusUnpaid && *req.Status != domain.DebtStatusPaid {
		return invalid("status must be Unpaid or Paid")
	}
	return nil
}
