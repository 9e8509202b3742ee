package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/logger"
	"sarisari/backend/internal/store"
)

// SalesLog is the append-only list of sold cart lines. Unlike the item and
// debt stores it keeps no in-memory copy and reads the key on every call.
type SalesLog struct {
	mu     sync.Mutex
	kv     store.KV
	logger *zap.Logger
}

func NewSalesLog(kv store.KV, log *zap.Logger) *SalesLog {
	return &SalesLog{kv: kv, logger: logger.Named(log, "sales")}
}

// List returns every recorded sale. Malformed JSON is removed from the
// store and a non-array value reads as an empty log. Backend read errors and
// records that fail to decode are returned.
func (s *SalesLog) List(ctx context.Context) ([]domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read(ctx)
}

// Append records one sale per line, all stamped with at. Nothing is written
// when the existing log cannot be read.
func (s *SalesLog) Append(ctx context.Context, lines []domain.CartLine, at time.Time) error {
	if len(lines) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sales, err := s.read(ctx)
	if err != nil {
		return err
	}
	for _, line := range lines {
		sales = append(sales, domain.Sale{CartLine: line, Date: at})
	}
	if err := saveList(ctx, s.kv, store.SalesKey, sales); err != nil {
		return fmt.Errorf("save sales: %w", err)
	}
	return nil
}

func (s *SalesLog) read(ctx context.Context) ([]domain.Sale, error) {
	raw, err := s.kv.Get(ctx, store.SalesKey)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Sale{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}

	var shape any
	if err := json.Unmarshal(raw, &shape); err != nil {
		s.logger.Error("failed to parse sales, clearing key", zap.Error(err))
		if delErr := s.kv.Delete(ctx, store.SalesKey); delErr != nil {
			s.logger.Warn("failed to clear corrupt sales key", zap.Error(delErr))
		}
		return []domain.Sale{}, nil
	}
	if _, ok := shape.([]any); !ok {
		s.logger.Error("sales data is not an array", zap.ByteString("value", raw))
		return []domain.Sale{}, nil
	}

	var sales []domain.Sale
	if err := json.Unmarshal(raw, &sales); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorrupt, store.SalesKey, err)
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return sales, nil
}
