package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/logger"
	"sarisari/backend/internal/store"
)

// Inventory is the item store. It owns the in-memory collection and rewrites
// the whole inventory key after every mutation.
type Inventory struct {
	mu     sync.Mutex
	kv     store.KV
	items  []domain.InventoryItem
	logger *zap.Logger
	now    func() time.Time
}

func NewInventory(ctx context.Context, kv store.KV, log *zap.Logger) (*Inventory, error) {
	inv := &Inventory{
		kv:     kv,
		logger: logger.Named(log, "inventory"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := inv.Reload(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// Reload replaces the in-memory collection with the persisted one. A corrupt
// value is logged and leaves the store empty.
func (s *Inventory) Reload(ctx context.Context) error {
	items, err := loadList[domain.InventoryItem](ctx, s.kv, store.InventoryKey)
	if errors.Is(err, errCorrupt) {
		s.logger.Error("failed to parse inventory data", zap.Error(err))
		items = []domain.InventoryItem{}
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *Inventory) List(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneItems(s.items), nil
}

// Get returns nil without error when id is unknown.
func (s *Inventory) Get(_ context.Context, id string) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	item := cloneItem(s.items[idx])
	return &item, nil
}

func (s *Inventory) Create(ctx context.Context, req domain.InventoryItemCreate) (domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item := domain.InventoryItem{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		Category:      req.Category,
		Image:         cloneString(req.Image),
		Barcode:       cloneString(req.Barcode),
		MinStockLevel: req.MinStockLevel,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	next := append(cloneItems(s.items), item)
	if err := saveList(ctx, s.kv, store.InventoryKey, next); err != nil {
		return domain.InventoryItem{}, err
	}
	s.items = next

	s.logger.Debug("item created", zap.String("id", item.ID), zap.String("name", item.Name))
	return cloneItem(item), nil
}

// Update merges the non-nil fields of req into the item. An unknown id
// returns nil without error and leaves the persisted collection untouched.
func (s *Inventory) Update(ctx context.Context, id string, req domain.InventoryItemUpdate) (*domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	updated := cloneItem(s.items[idx])
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Price != nil {
		updated.Price = *req.Price
	}
	if req.Stock != nil {
		updated.Stock = *req.Stock
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Image != nil {
		updated.Image = cloneString(req.Image)
	}
	if req.Barcode != nil {
		updated.Barcode = cloneString(req.Barcode)
	}
	if req.MinStockLevel != nil {
		updated.MinStockLevel = *req.MinStockLevel
	}
	updated.UpdatedAt = s.now()

	next := cloneItems(s.items)
	next[idx] = updated
	if err := saveList(ctx, s.kv, store.InventoryKey, next); err != nil {
		return nil, err
	}
	s.items = next

	result := cloneItem(updated)
	return &result, nil
}

// Delete reports whether an item was removed. The collection is only
// rewritten when something was deleted.
func (s *Inventory) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(cloneItems(s.items), idx, idx+1)
	if err := saveList(ctx, s.kv, store.InventoryKey, next); err != nil {
		return false, err
	}
	s.items = next
	return true, nil
}

// Search matches query case-insensitively against name, description and barcode.
func (s *Inventory) Search(_ context.Context, query string) ([]domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	result := make([]domain.InventoryItem, 0)
	for _, item := range s.items {
		if containsFold(item.Name, q) || containsFold(item.Description, q) ||
			(item.Barcode != nil && containsFold(*item.Barcode, q)) {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

func (s *Inventory) LowStock(_ context.Context) ([]domain.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]domain.InventoryItem, 0)
	for _, item := range s.items {
		if item.IsLowStock() {
			result = append(result, cloneItem(item))
		}
	}
	return result, nil
}

func (s *Inventory) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(item domain.InventoryItem) bool {
		return item.ID == id
	})
}

func containsFold(value string, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(value), lowerQuery)
}

func cloneItem(src domain.InventoryItem) domain.InventoryItem {
	dst := src
	dst.Image = cloneString(src.Image)
	dst.Barcode = cloneString(src.Barcode)
	return dst
}

func cloneItems(src []domain.InventoryItem) []domain.InventoryItem {
	dst := make([]domain.InventoryItem, len(src))
	for i, item := range src {
		dst[i] = cloneItem(item)
	}
	return dst
}
