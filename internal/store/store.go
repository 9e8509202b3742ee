package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Persisted keys owned by the individual stores.
const (
	InventoryKey = "inventoryDB"
	DebtsKey     = "debtsDB"
	SalesKey     = "sarisariai_sales"
)

// KV is the persisted key-value collaborator behind every store. Values are
// opaque bytes; the stores keep one JSON array per key and rewrite it whole.
type KV interface {
	// Get returns ErrNotFound when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for an absent key.
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}
