package ports

import (
	"context"

	"tradeTrackerBot/internal/domain"
)

// TradeRepository defines the interface for storing and retrieving tracked trades.
type TradeRepository interface {
	// Save inserts the trade or fully replaces an existing record with the
	// same ID. Saving is idempotent, last write wins.
	Save(ctx context.Context, trade *domain.Trade) error
	// Find retrieves a trade by its ID.
	// Returns nil, nil if not found.
	Find(ctx context.Context, tradeID string) (*domain.Trade, error)
	// FindOpen retrieves all trades that are not closed; order is unspecified.
	FindOpen(ctx context.Context) ([]*domain.Trade, error)
	// Update overwrites the full record for an existing trade ID. Updating a
	// trade that was never saved is a silent no-op; callers that need the row
	// to exist must Save first.
	Update(ctx context.Context, trade *domain.Trade) error
}
