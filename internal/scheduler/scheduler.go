package scheduler

import (
	"context"
	"time"

	"github.com/renderbase/renderbase/internal/config"
	"github.com/renderbase/renderbase/internal/logger"
	"github.com/renderbase/renderbase/internal/service"
	"go.uber.org/fx"
)

// CreditResetScheduler runs the monthly credit reset sweep on a fixed
// interval. Overlap protection lives in the service's single-flight guard,
// so a manually triggered sweep and the ticker cannot run concurrently.
type CreditResetScheduler struct {
	cfg          *config.Configuration
	logger       *logger.Logger
	resetService service.CreditResetService

	stop chan struct{}
	done chan struct{}
}

// NewCreditResetScheduler creates a new instance of CreditResetScheduler
func NewCreditResetScheduler(
	cfg *config.Configuration,
	logger *logger.Logger,
	resetService service.CreditResetService,
) *CreditResetScheduler {
	return &CreditResetScheduler{
		cfg:          cfg,
		logger:       logger,
		resetService: resetService,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// RegisterHooks wires the scheduler into the application lifecycle
func (s *CreditResetScheduler) RegisterHooks(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go s.run()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(s.stop)
			select {
			case <-s.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func (s *CreditResetScheduler) run() {
	defer close(s.done)

	interval := s.cfg.Billing.ResetInterval
	if interval <= 0 {
		interval = time.Hour
	}

	s.logger.Infow("credit reset scheduler started",
		"interval", interval,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.stop:
			s.logger.Infow("credit reset scheduler stopped")
			return
		}
	}
}

func (s *CreditResetScheduler) runSweep() {
	ctx := context.Background()

	resp, err := s.resetService.ResetMonthlyCredits(ctx)
	if err != nil {
		s.logger.Errorw("scheduled credit reset sweep failed",
			"error", err,
		)
		return
	}

	s.logger.Infow("scheduled credit reset sweep completed",
		"examined", resp.Examined,
		"reset", resp.Reset,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
	)
}
