package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/store"
	"sarisari/backend/internal/store/memory"
)

// failingKV refuses writes to one key and delegates everything else.
type failingKV struct {
	store.KV
	failKey string
}

func (f failingKV) Set(ctx context.Context, key string, value []byte) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.KV.Set(ctx, key, value)
}

func newTestService(t *testing.T, kv store.KV) *Service {
	t.Helper()
	svc, err := New(context.Background(), kv, "₱", nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustCreateItem(t *testing.T, inv *Inventory, name string, price string, stock int) domain.InventoryItem {
	t.Helper()
	item, err := inv.Create(context.Background(), domain.InventoryItemCreate{
		Name:          name,
		Price:         decimal.RequireFromString(price),
		Stock:         stock,
		Category:      "Snacks",
		MinStockLevel: 5,
	})
	if err != nil {
		t.Fatalf("create item %s: %v", name, err)
	}
	return item
}

func TestInventoryCreateUpdateDeletePersists(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	svc := newTestService(t, kv)

	item := mustCreateItem(t, svc.Inventory, "Lucky Me Pancit Canton", "15.50", 40)
	if item.ID == "" {
		t.Fatalf("expected generated id")
	}

	name := "Pancit Canton Kalamansi"
	stock := 3
	updated, err := svc.Inventory.Update(ctx, item.ID, domain.InventoryItemUpdate{Name: &name, Stock: &stock})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.Name != name || updated.Stock != 3 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if !updated.Price.Equal(decimal.RequireFromString("15.50")) {
		t.Fatalf("expected untouched price, got %s", updated.Price)
	}

	reopened, err := NewInventory(ctx, kv, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Get(ctx, item.ID)
	if err != nil || got == nil {
		t.Fatalf("expected persisted item, got %v %v", got, err)
	}
	if got.Name != name || got.Stock != 3 {
		t.Fatalf("persisted item not updated: %+v", got)
	}

	deleted, err := svc.Inventory.Delete(ctx, item.ID)
	if err != nil || !deleted {
		t.Fatalf("expected delete to succeed, got %v %v", deleted, err)
	}
	deleted, err = svc.Inventory.Delete(ctx, item.ID)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, got %v %v", deleted, err)
	}
}

func TestInventoryUnknownIDIsSoftMiss(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New())

	got, err := svc.Inventory.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil for unknown get, got %v %v", got, err)
	}
	stock := 1
	updated, err := svc.Inventory.Update(ctx, "missing", domain.InventoryItemUpdate{Stock: &stock})
	if err != nil || updated != nil {
		t.Fatalf("expected nil, nil for unknown update, got %v %v", updated, err)
	}
}

func TestInventorySearchAndLowStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New())

	barcode := "4800016644290"
	if _, err := svc.Inventory.Create(ctx, domain.InventoryItemCreate{
		Name: "Kopiko Brown", Description: "3-in-1 coffee", Price: decimal.NewFromInt(8),
		Stock: 100, MinStockLevel: 10, Barcode: &barcode,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	mustCreateItem(t, svc.Inventory, "Safeguard Soap", "45", 5)

	found, err := svc.Inventory.Search(ctx, "COFFEE")
	if err != nil || len(found) != 1 || found[0].Name != "Kopiko Brown" {
		t.Fatalf("expected description match, got %+v %v", found, err)
	}
	found, _ = svc.Inventory.Search(ctx, "66442")
	if len(found) != 1 {
		t.Fatalf("expected barcode match, got %d", len(found))
	}
	found, _ = svc.Inventory.Search(ctx, "")
	if len(found) != 2 {
		t.Fatalf("expected empty query to match all, got %d", len(found))
	}

	low, err := svc.Inventory.LowStock(ctx)
	if err != nil || len(low) != 1 || low[0].Name != "Safeguard Soap" {
		t.Fatalf("expected stock == minStockLevel to be low, got %+v %v", low, err)
	}
}

func TestInventoryFailedPersistLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	kv := failingKV{KV: memory.New(), failKey: store.InventoryKey}
	inv, err := NewInventory(ctx, kv, nil)
	if err != nil {
		t.Fatalf("new inventory: %v", err)
	}

	if _, err := inv.Create(ctx, domain.InventoryItemCreate{Name: "Coke Mismo"}); err == nil {
		t.Fatalf("expected create to fail when the write fails")
	}
	items, _ := inv.List(ctx)
	if len(items) != 0 {
		t.Fatalf("expected no items after failed write, got %d", len(items))
	}
}

func TestInventoryCorruptValueStartsEmpty(t *testing.T) {
	kv := memory.NewSeeded(map[string][]byte{store.InventoryKey: []byte("{not json")})
	inv, err := NewInventory(context.Background(), kv, nil)
	if err != nil {
		t.Fatalf("expected corrupt data to be tolerated, got %v", err)
	}
	items, _ := inv.List(context.Background())
	if len(items) != 0 {
		t.Fatalf("expected empty inventory, got %d", len(items))
	}
}

func TestDebtsMarkPaidAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, memory.New())
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.Debts.now = func() time.Time { return fixed }

	debt, err := svc.Debts.Create(ctx, domain.DebtCreate{
		Debtor:      "Aling Nena",
		Amount:      decimal.RequireFromString("250.75"),
		Date:        "2026-02-20",
		DueDate:     "2026-03-06",
		Description: "rice and sardines",
		Status:      domain.DebtStatusUnpaid,
	})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}

	paid, err := svc.Debts.MarkPaid(ctx, debt.ID)
	if err != nil || paid == nil {
		t.Fatalf("mark paid: %v %v", paid, err)
	}
	if paid.Status != domain.DebtStatusPaid {
		t.Fatalf("expected Paid status, got %s", paid.Status)
	}
	if paid.PaidDate == nil || !paid.PaidDate.Equal(fixed) {
		t.Fatalf("expected paid date %s, got %v", fixed, paid.PaidDate)
	}
	if paid.Date != "2026-02-20" {
		t.Fatalf("expected origination date to stay, got %s", paid.Date)
	}

	missing, err := svc.Debts.MarkPaid(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected soft miss for unknown debt, got %v %v", missing, err)
	}

	found, _ := svc.Debts.Search(ctx, "SARDINES")
	if len(found) != 1 {
		t.Fatalf("expected description match, got %d", len(found))
	}
	found, _ = svc.Debts.Search(ctx, "nena")
	if len(found) != 1 {
		t.Fatalf("expected debtor match, got %d", len(found))
	}
}

func TestServiceReloadPicksUpRewrittenKV(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	svc := newTestService(t, kv)

	other, err := NewInventory(ctx, kv, nil)
	if err != nil {
		t.Fatalf("second inventory: %v", err)
	}
	mustCreateItem(t, other, "Bear Brand", "12", 24)

	items, _ := svc.Inventory.List(ctx)
	if len(items) != 0 {
		t.Fatalf("expected stale cache before reload")
	}
	if err := svc.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	items, _ = svc.Inventory.List(ctx)
	if len(items) != 1 {
		t.Fatalf("expected reloaded item, got %d", len(items))
	}
}

func TestActorRoundTripsThroughContext(t *testing.T) {
	ctx := WithActor(context.Background(), domain.Actor{Username: "cashier", Role: domain.RoleCashier})
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != domain.RoleCashier {
		t.Fatalf("expected cashier actor, got %+v %v", actor, ok)
	}
	if _, ok := ActorFromContext(context.Background()); ok {
		t.Fatalf("expected no actor on bare context")
	}
}
