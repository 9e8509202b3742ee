package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/logger"
)

const checkoutFailedMessage = "Failed to process order. Please try again."

var ErrItemUpdateFailed = errors.New("failed to update item")

// Checkout turns a cart into sales records and stock decrements.
//
// It is not atomic. Sales are appended before stock is touched, and stock
// updates that already landed stay applied when a sibling update fails.
type Checkout struct {
	inventory *Inventory
	sales     *SalesLog
	logger    *zap.Logger
	currency  string
	now       func() time.Time
}

func NewCheckout(inventory *Inventory, sales *SalesLog, currency string, log *zap.Logger) *Checkout {
	if currency == "" {
		currency = "₱"
	}
	return &Checkout{
		inventory: inventory,
		sales:     sales,
		logger:    logger.Named(log, "checkout"),
		currency:  currency,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run processes lines against the currentItems snapshot. clearCart is only
// called when every stock update succeeded. An empty cart is a no-op and
// reports Skipped.
func (c *Checkout) Run(ctx context.Context, lines []domain.CartLine, currentItems []domain.InventoryItem, clearCart func()) (domain.CheckoutResult, error) {
	if len(lines) == 0 {
		return domain.CheckoutResult{Skipped: true, Total: decimal.Zero}, nil
	}

	at := c.now()
	total := decimal.Zero
	units := 0
	for _, line := range lines {
		total = total.Add(line.Subtotal())
		units += line.Quantity
	}
	result := domain.CheckoutResult{
		Lines:      len(lines),
		TotalItems: units,
		Total:      total,
		At:         at,
	}

	if err := c.sales.Append(ctx, lines, at); err != nil {
		c.logger.Error("failed to record sales", zap.Error(err), zap.Int("lines", len(lines)))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, line := range lines {
		idx := slices.IndexFunc(currentItems, func(item domain.InventoryItem) bool {
			return item.ID == line.ID
		})
		if idx < 0 {
			continue
		}
		id := line.ID
		newStock := max(0, currentItems[idx].Stock-line.Quantity)

		g.Go(func() error {
			updated, err := c.inventory.Update(gctx, id, domain.InventoryItemUpdate{Stock: &newStock})
			if err != nil {
				return fmt.Errorf("update stock for %s: %w", id, err)
			}
			if updated == nil {
				return fmt.Errorf("%w %s", ErrItemUpdateFailed, id)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.logger.Error("checkout failed", zap.Error(err))
		result.Message = checkoutFailedMessage
		return result, err
	}

	if clearCart != nil {
		clearCart()
	}
	result.Message = fmt.Sprintf("Successfully processed order for %s%s", c.currency, domain.FormatPrice(total))
	c.logger.Info("checkout completed",
		zap.Int("lines", result.Lines),
		zap.Int("units", units),
		zap.String("total", domain.FormatPrice(total)),
	)
	return result, nil
}
