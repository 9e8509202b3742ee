package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"sarisari/backend/internal/cart"
	"sarisari/backend/internal/domain"
	"sarisari/backend/internal/report"
	"sarisari/backend/internal/service"
)

const (
	DefaultDigestSchedule = "0 20 * * *"
	sessionPruneSchedule  = "@every 10m"
)

// Scheduler runs the store's background jobs: the end-of-day digest and
// cleanup of abandoned cart sessions.
type Scheduler struct {
	cron           *cron.Cron
	svc            *service.Service
	sessions       *cart.Sessions
	digestSchedule string
	sessionIdle    time.Duration
	logger         *zap.Logger
	now            func() time.Time
}

func NewScheduler(svc *service.Service, sessions *cart.Sessions, digestSchedule string, sessionIdle time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if digestSchedule == "" {
		digestSchedule = DefaultDigestSchedule
	}
	if sessionIdle <= 0 {
		sessionIdle = 2 * time.Hour
	}

	return &Scheduler{
		cron:           cron.New(),
		svc:            svc,
		sessions:       sessions,
		digestSchedule: digestSchedule,
		sessionIdle:    sessionIdle,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the cron loop. An invalid digest
// schedule is returned before anything runs.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("digest", s.digestSchedule))

	if _, err := s.cron.AddFunc(s.digestSchedule, s.sendDailyDigest); err != nil {
		return fmt.Errorf("schedule daily digest %q: %w", s.digestSchedule, err)
	}
	if _, err := s.cron.AddFunc(sessionPruneSchedule, s.pruneSessions); err != nil {
		return fmt.Errorf("schedule session prune: %w", err)
	}

	s.cron.Start()
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDailyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, lowStock, err := s.digest(ctx)
	if err != nil {
		s.logger.Error("failed to build daily digest", zap.Error(err))
		return
	}

	s.logger.Info("daily digest",
		zap.String("date", summary.Date),
		zap.String("revenue_today", domain.FormatPrice(summary.Sales.RevenueToday)),
		zap.Float64("revenue_change_pct", summary.Sales.RevenueChange),
		zap.Int("units_sold", summary.Sales.Units),
		zap.Int("unpaid_debts", summary.Debts.Unpaid),
		zap.Int("overdue_debts", summary.Debts.Overdue),
		zap.String("total_due", domain.FormatPrice(summary.Debts.TotalDue)),
	)
	for _, item := range lowStock {
		s.logger.Warn("low stock",
			zap.String("id", item.ID),
			zap.String("name", item.Name),
			zap.Int("stock", item.Stock),
			zap.Int("min_stock_level", item.MinStockLevel),
		)
	}
}

func (s *Scheduler) digest(ctx context.Context) (report.Summary, []domain.InventoryItem, error) {
	items, err := s.svc.Inventory.List(ctx)
	if err != nil {
		return report.Summary{}, nil, err
	}
	debts, err := s.svc.Debts.List(ctx)
	if err != nil {
		return report.Summary{}, nil, err
	}
	sales, err := s.svc.Sales.List(ctx)
	if err != nil {
		return report.Summary{}, nil, err
	}
	lowStock, err := s.svc.Inventory.LowStock(ctx)
	if err != nil {
		return report.Summary{}, nil, err
	}
	return report.Summarize(items, debts, sales, s.now()), lowStock, nil
}

func (s *Scheduler) pruneSessions() {
	if removed := s.sessions.Prune(s.sessionIdle); removed > 0 {
		s.logger.Info("pruned idle sessions", zap.Int("removed", removed), zap.Int("remaining", s.sessions.Len()))
	}
}
