package app

import (
	"context"
	"fmt"
	"time"

	"tradeTrackerBot/internal/ports"
)

const defaultRefreshInterval = 60 * time.Second

// Refresher periodically walks all open trades and pushes a fresh price to
// each rendered message. Its only job is sequencing and isolating per-trade
// failures; the per-trade work lives in TradeService.RefreshOne.
type Refresher struct {
	logger   ports.Logger
	repo     ports.TradeRepository
	service  *TradeService
	interval time.Duration
}

// NewRefresher creates the background refresh scheduler.
func NewRefresher(logger ports.Logger, repo ports.TradeRepository, service *TradeService, interval time.Duration) (*Refresher, error) {
	if logger == nil || repo == nil || service == nil {
		return nil, fmt.Errorf("missing required dependencies for Refresher")
	}
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Refresher{logger: logger, repo: repo, service: service, interval: interval}, nil
}

// Run ticks until the context is cancelled. Each tick refreshes every open
// trade sequentially; a cycle that overruns the interval delays the next tick
// rather than running concurrently with it.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info(ctx, "Trade refresher started", map[string]interface{}{"interval": r.interval.String()})
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "Trade refresher stopped")
			return
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}

// RefreshAll runs one refresh cycle over all open trades. A failure on one
// trade is logged and never aborts the rest of the cycle, and no error is
// surfaced to any user.
func (r *Refresher) RefreshAll(ctx context.Context) {
	open, err := r.repo.FindOpen(ctx)
	if err != nil {
		r.logger.Error(ctx, err, "Refresh cycle could not list open trades")
		return
	}
	r.logger.Debug(ctx, "Refresh cycle started", map[string]interface{}{"openTrades": len(open)})

	for _, trade := range open {
		if err := r.service.RefreshOne(ctx, trade); err != nil {
			r.logger.Warn(ctx, "Skipping trade this cycle", map[string]interface{}{
				"tradeID": trade.ID, "error": err.Error(),
			})
		}
	}
	r.logger.Debug(ctx, "Refresh cycle finished")
}
