package ports

import (
	"context"

	"tradeTrackerBot/internal/domain"
)

// Renderer turns a trade plus a price snapshot into a displayed message.
// When the trade carries no MessageID a new message is created and its ID
// returned; otherwise the existing message is edited in place and the same
// ID is returned. Closed trades render without any close action.
type Renderer interface {
	Render(ctx context.Context, trade *domain.Trade, price float64) (messageID string, err error)
}
