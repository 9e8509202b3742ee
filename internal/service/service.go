package service

import (
	"context"

	"go.uber.org/zap"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/store"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Service bundles the stores that share one KV backend.
type Service struct {
	KV        store.KV
	Inventory *Inventory
	Debts     *Debts
	Sales     *SalesLog
	Checkout  *Checkout
}

func New(ctx context.Context, kv store.KV, currency string, log *zap.Logger) (*Service, error) {
	inventory, err := NewInventory(ctx, kv, log)
	if err != nil {
		return nil, err
	}
	debts, err := NewDebts(ctx, kv, log)
	if err != nil {
		return nil, err
	}
	sales := NewSalesLog(kv, log)

	return &Service{
		KV:        kv,
		Inventory: inventory,
		Debts:     debts,
		Sales:     sales,
		Checkout:  NewCheckout(inventory, sales, currency, log),
	}, nil
}

// Reload refreshes the cached stores after the KV was rewritten underneath
// them, e.g. by a backup import.
func (s *Service) Reload(ctx context.Context) error {
	if err := s.Inventory.Reload(ctx); err != nil {
		return err
	}
	return s.Debts.Reload(ctx)
}
