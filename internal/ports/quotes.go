package ports

import (
	"context"

	"tradeTrackerBot/internal/domain"
)

// QuoteProvider retrieves the latest traded price for a symbol on one venue.
// Implementations must honour context deadlines so callers can impose their
// own timeout, and must wrap missing or unparsable prices in
// ErrQuoteUnavailable.
type QuoteProvider interface {
	// LastPrice returns the most recent traded price for a symbol.
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// QuoteSource resolves a venue to its provider and fetches the latest traded
// price there. Unknown venues fail with ErrExchangeUnsupported.
type QuoteSource interface {
	LastPrice(ctx context.Context, exchange domain.Exchange, symbol string) (float64, error)
}
