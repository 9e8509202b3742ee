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

// Debts is the utang store. It mirrors Inventory: one persisted array,
// rewritten whole after every mutation.
type Debts struct {
	mu     sync.Mutex
	kv     store.KV
	debts  []domain.Debt
	logger *zap.Logger
	now    func() time.Time
}

func NewDebts(ctx context.Context, kv store.KV, log *zap.Logger) (*Debts, error) {
	d := &Debts{
		kv:     kv,
		logger: logger.Named(log, "debts"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	if err := d.Reload(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Debts) Reload(ctx context.Context) error {
	debts, err := loadList[domain.Debt](ctx, s.kv, store.DebtsKey)
	if errors.Is(err, errCorrupt) {
		s.logger.Error("failed to parse debts data", zap.Error(err))
		debts = []domain.Debt{}
	} else if err != nil {
		return err
	}

	s.mu.Lock()
	s.debts = debts
	s.mu.Unlock()
	return nil
}

func (s *Debts) List(_ context.Context) ([]domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneDebts(s.debts), nil
}

func (s *Debts) Get(_ context.Context, id string) (*domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}
	debt := cloneDebt(s.debts[idx])
	return &debt, nil
}

func (s *Debts) Create(ctx context.Context, req domain.DebtCreate) (domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	debt := domain.Debt{
		ID:          uuid.NewString(),
		Debtor:      req.Debtor,
		Amount:      req.Amount,
		Date:        req.Date,
		DueDate:     req.DueDate,
		Description: req.Description,
		Status:      req.Status,
		PaidDate:    cloneTime(req.PaidDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := append(cloneDebts(s.debts), debt)
	if err := saveList(ctx, s.kv, store.DebtsKey, next); err != nil {
		return domain.Debt{}, err
	}
	s.debts = next
	return cloneDebt(debt), nil
}

// Update returns nil without error for an unknown id. No status transition
// rules are enforced here.
func (s *Debts) Update(ctx context.Context, id string, req domain.DebtUpdate) (*domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	updated := cloneDebt(s.debts[idx])
	if req.Debtor != nil {
		updated.Debtor = *req.Debtor
	}
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.DueDate != nil {
		updated.DueDate = *req.DueDate
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if req.PaidDate != nil {
		updated.PaidDate = cloneTime(req.PaidDate)
	}
	updated.UpdatedAt = s.now()

	next := cloneDebts(s.debts)
	next[idx] = updated
	if err := saveList(ctx, s.kv, store.DebtsKey, next); err != nil {
		return nil, err
	}
	s.debts = next

	result := cloneDebt(updated)
	return &result, nil
}

// MarkPaid stamps the debt as paid now. Paying an already paid debt simply
// moves paidDate forward.
func (s *Debts) MarkPaid(ctx context.Context, id string) (*domain.Debt, error) {
	status := domain.DebtStatusPaid
	paidAt := s.now()
	return s.Update(ctx, id, domain.DebtUpdate{Status: &status, PaidDate: &paidAt})
}

func (s *Debts) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(cloneDebts(s.debts), idx, idx+1)
	if err := saveList(ctx, s.kv, store.DebtsKey, next); err != nil {
		return false, err
	}
	s.debts = next
	return true, nil
}

// Search matches query case-insensitively against debtor and description.
func (s *Debts) Search(_ context.Context, query string) ([]domain.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(query)
	result := make([]domain.Debt, 0)
	for _, debt := range s.debts {
		if containsFold(debt.Debtor, q) || containsFold(debt.Description, q) {
			result = append(result, cloneDebt(debt))
		}
	}
	return result, nil
}

func (s *Debts) indexOf(id string) int {
	return slices.IndexFunc(s.debts, func(debt domain.Debt) bool {
		return debt.ID == id
	})
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneDebt(src domain.Debt) domain.Debt {
	dst := src
	dst.PaidDate = cloneTime(src.PaidDate)
	return dst
}

func cloneDebts(src []domain.Debt) []domain.Debt {
	dst := make([]domain.Debt, len(src))
	for i, debt := range src {
		dst[i] = cloneDebt(debt)
	}
	return dst
}
