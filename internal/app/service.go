package app

import (
	"context"
	"fmt"
	"time"

	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"
)

const defaultQuoteTimeout = 5 * time.Second

// Identity names the user and channel an inbound action came from.
type Identity struct {
	UserID    string
	ChannelID string
}

// Result carries the outcome of a lifecycle operation back to the caller,
// including the price snapshot used and the ROE computed from it.
type Result struct {
	Trade   *domain.Trade
	Price   float64
	ROE     float64
	Created bool // true when CreateOrEdit stored a brand new trade
}

// TradeService orchestrates the lifecycle of tracked trades: creation and
// edits, moderator-gated closing, and the per-trade refresh used by the
// background scheduler. The repository is the single source of truth; the
// service only holds a record in memory for the duration of one operation.
//
// No lock serialises operations on one trade ID. Two interleaved edits or an
// edit racing a close can overwrite each other, matching the original
// behaviour of the bot; last write wins at the store.
type TradeService struct {
	logger       ports.Logger
	repo         ports.TradeRepository
	quotes       ports.QuoteSource
	renderer     ports.Renderer
	quoteTimeout time.Duration
}

// NewTradeService creates the lifecycle service.
func NewTradeService(logger ports.Logger, repo ports.TradeRepository, quotes ports.QuoteSource, renderer ports.Renderer, quoteTimeout time.Duration) (*TradeService, error) {
	if logger == nil || repo == nil || quotes == nil || renderer == nil {
		return nil, fmt.Errorf("missing required dependencies for TradeService")
	}
	if quoteTimeout <= 0 {
		quoteTimeout = defaultQuoteTimeout
	}
	return &TradeService{
		logger:       logger,
		repo:         repo,
		quotes:       quotes,
		renderer:     renderer,
		quoteTimeout: quoteTimeout,
	}, nil
}

// CreateOrEdit validates a submitted trade form, verifies the ticker against
// the exchange with a bounded quote call, then persists and renders the trade.
// Editing reuses the deterministic trade ID, so a resubmission for the same
// ticker and direction overwrites the prior record and keeps its message.
//
// The trade is durably saved before any render attempt; a render failure
// returns the saved trade alongside ErrRenderFailed so the caller can warn
// about the stale display without losing the record.
func (s *TradeService) CreateOrEdit(ctx context.Context, id Identity, form *TradeForm) (*Result, error) {
	if form == nil {
		return nil, fmt.Errorf("nil trade form: %w", ports.ErrValidation)
	}

	price, err := s.fetchQuote(ctx, form.Exchange, form.Ticker)
	if err != nil {
		return nil, err
	}

	tradeID := domain.TradeID(id.UserID, id.ChannelID, form.Ticker, form.Direction)

	prior, err := s.repo.Find(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	trade := &domain.Trade{
		ID:         tradeID,
		Ticker:     form.Ticker,
		Leverage:   form.Leverage,
		Exchange:   form.Exchange,
		Direction:  form.Direction,
		EntryPrice: form.EntryPrice,
		StopLoss:   form.StopLoss,
		TakeProfit: form.TakeProfit,
		UserID:     id.UserID,
		ChannelID:  id.ChannelID,
	}
	if prior != nil && prior.IsOpen() {
		// Keep the rendered message across edits of an open trade. A closed
		// trade's final message is terminal; re-creating the same ticker and
		// direction posts a fresh message instead of reviving it.
		trade.MessageID = prior.MessageID
	}

	// Persist before rendering so a failed render still leaves a recoverable record.
	if err := s.repo.Save(ctx, trade); err != nil {
		return nil, err
	}

	result := &Result{
		Trade:   trade,
		Price:   price,
		ROE:     domain.ROE(trade.EntryPrice, price, trade.Leverage, trade.Direction),
		Created: prior == nil || prior.Closed,
	}

	messageID, err := s.renderer.Render(ctx, trade, price)
	if err != nil {
		s.logger.Error(ctx, err, "Trade saved but render failed", map[string]interface{}{"tradeID": trade.ID})
		return result, fmt.Errorf("render of trade %s: %w: %w", trade.ID, ports.ErrRenderFailed, err)
	}

	if trade.MessageID == nil {
		trade.MessageID = &messageID
		if err := s.repo.Update(ctx, trade); err != nil {
			return result, err
		}
	}

	s.logger.Info(ctx, "Trade stored", map[string]interface{}{
		"tradeID": trade.ID, "ticker": trade.Ticker, "exchange": trade.Exchange,
		"direction": trade.Direction, "leverage": trade.Leverage, "created": result.Created,
	})
	return result, nil
}

// Close terminates an open trade at the currently quoted price. Closing is
// gated on moderator permission and idempotent: a missing or already closed
// trade reports ErrNotFound without mutating anything.
//
// Once the store commit succeeds the close stands even if the final render
// fails; that case returns the result together with ErrRenderFailed.
func (s *TradeService) Close(ctx context.Context, tradeID string, isModerator bool) (*Result, error) {
	trade, err := s.repo.Find(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil || trade.Closed {
		return nil, fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
	}
	if !isModerator {
		return nil, fmt.Errorf("closing trade %s: %w", tradeID, ports.ErrPermissionDenied)
	}

	closePrice, err := s.fetchQuote(ctx, trade.Exchange, trade.Ticker)
	if err != nil {
		return nil, err
	}

	trade.Closed = true
	trade.ClosePrice = &closePrice
	if err := s.repo.Update(ctx, trade); err != nil {
		return nil, err
	}

	result := &Result{
		Trade: trade,
		Price: closePrice,
		ROE:   domain.ROE(trade.EntryPrice, closePrice, trade.Leverage, trade.Direction),
	}
	s.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"tradeID": trade.ID, "closePrice": closePrice, "roe": result.ROE,
	})

	if _, err := s.renderer.Render(ctx, trade, closePrice); err != nil {
		s.logger.Error(ctx, err, "Trade closed but render failed", map[string]interface{}{"tradeID": trade.ID})
		return result, fmt.Errorf("render of closed trade %s: %w: %w", trade.ID, ports.ErrRenderFailed, err)
	}
	return result, nil
}

// RefreshOne re-renders a single open trade with a fresh quote. A trade that
// never got a message can never be displayed again and is closed as abandoned.
// A failed quote skips this trade for this cycle without mutating it.
func (s *TradeService) RefreshOne(ctx context.Context, trade *domain.Trade) error {
	if trade.MessageID == nil {
		s.logger.Warn(ctx, "Open trade has no message, closing as abandoned", map[string]interface{}{"tradeID": trade.ID})
		trade.Closed = true
		if err := s.repo.Update(ctx, trade); err != nil {
			return err
		}
		return nil
	}

	// No explicit timeout here: a slow venue delays this trade only, and the
	// scheduler isolates it from the rest of the cycle.
	price, err := s.quotes.LastPrice(ctx, trade.Exchange, trade.Ticker)
	if err != nil {
		return fmt.Errorf("refresh quote for trade %s: %w", trade.ID, err)
	}

	if _, err := s.renderer.Render(ctx, trade, price); err != nil {
		return fmt.Errorf("refresh render for trade %s: %w: %w", trade.ID, ports.ErrRenderFailed, err)
	}
	s.logger.Debug(ctx, "Trade refreshed", map[string]interface{}{"tradeID": trade.ID, "price": price})
	return nil
}

// OpenTradesFor lists the caller's open trades in one channel, for the edit
// selection flow.
func (s *TradeService) OpenTradesFor(ctx context.Context, id Identity) ([]*domain.Trade, error) {
	open, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]*domain.Trade, 0, len(open))
	for _, trade := range open {
		if trade.UserID == id.UserID && trade.ChannelID == id.ChannelID {
			mine = append(mine, trade)
		}
	}
	return mine, nil
}

// Find retrieves a trade by ID, reporting ErrNotFound when absent. Used to
// prefill the edit modal.
func (s *TradeService) Find(ctx context.Context, tradeID string) (*domain.Trade, error) {
	trade, err := s.repo.Find(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %s: %w", tradeID, ports.ErrNotFound)
	}
	return trade, nil
}

// fetchQuote performs a user-facing quote call bounded by the configured
// timeout.
func (s *TradeService) fetchQuote(ctx context.Context, exchange domain.Exchange, ticker string) (float64, error) {
	quoteCtx, cancel := context.WithTimeout(ctx, s.quoteTimeout)
	defer cancel()

	price, err := s.quotes.LastPrice(quoteCtx, exchange, ticker)
	if err != nil {
		s.logger.Warn(ctx, "Quote fetch failed", map[string]interface{}{
			"exchange": exchange, "ticker": ticker, "error": err.Error(),
		})
		return 0, fmt.Errorf("quote for %s on %s: %w", ticker, exchange, err)
	}
	return price, nil
}
