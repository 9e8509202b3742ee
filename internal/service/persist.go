package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sarisari/backend/internal/store"
)

// errCorrupt marks a persisted value that exists but cannot be decoded.
var errCorrupt = errors.New("corrupt persisted collection")

// loadList reads the JSON array stored under key. A missing key is an empty
// collection; an undecodable value is reported wrapped in errCorrupt.
func loadList[T any](ctx context.Context, kv store.KV, key string) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorrupt, key, err)
	}
	if list == nil {
		list = []T{}
	}
	return list, nil
}

// saveList rewrites the whole collection under key.
func saveList[T any](ctx context.Context, kv store.KV, key string, list []T) error {
	payload, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
