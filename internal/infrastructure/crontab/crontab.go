package crontab

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"media-store/internal/config"
	domain "media-store/internal/domain/media"
	"media-store/internal/utils/platformerrors"
)

// CronJobTimeout bounds a single reconcile sweep.
const CronJobTimeout = 10 * time.Minute

type Crontab struct {
	ctab       *crontab.Crontab
	cfg        *config.Config
	reconciler *domain.Reconciler
	log        zerolog.Logger
	running    atomic.Bool
}

func NewCrontab(cfg *config.Config, reconciler *domain.Reconciler, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:       crontab.New(),
		cfg:        cfg,
		reconciler: reconciler,
		log:        log.With().Str("component", "crontab").Logger(),
	}
}

// Run schedules the orphan reconcile sweep and blocks until ctx is cancelled.
func (c *Crontab) Run(ctx context.Context) error {
	if !c.cfg.ReconcileEnabled {
		c.log.Info().Msg("orphan reconciliation disabled")
		<-ctx.Done()
		return nil
	}

	expr := cronExpr(c.cfg.ReconcileIntervalMinutes)
	if err := c.ctab.AddJob(expr, func() {
		jobCtx, cancel := context.WithTimeout(ctx, CronJobTimeout)
		defer cancel()
		c.reconcile(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add reconcile job")
	}
	c.log.Info().Str("schedule", expr).Dur("grace", c.cfg.ReconcileGracePeriod).Msg("orphan reconciliation scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) reconcile(ctx context.Context) {
	if !c.running.CompareAndSwap(false, true) {
		c.log.Warn().Msg("previous reconcile sweep still running, skipping")
		return
	}
	defer c.running.Store(false)

	if _, err := c.reconciler.Run(ctx); err != nil {
		if pe := platformerrors.GetPlatformError(err); pe != nil {
			platformerrors.LogError(c.log, pe)
			return
		}
		c.log.Error().Err(err).Msg("reconcile sweep failed")
	}
}

// cronExpr turns an interval in minutes into a crontab schedule.
func cronExpr(minutes int) string {
	if minutes <= 0 {
		minutes = 30
	}
	if minutes < 60 {
		return fmt.Sprintf("*/%d * * * *", minutes)
	}
	hours := minutes / 60
	if hours > 23 {
		return "0 0 * * *"
	}
	return fmt.Sprintf("0 */%d * * *", hours)
}
