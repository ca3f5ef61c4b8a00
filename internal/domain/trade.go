package domain

import "fmt"

// Exchange identifies a supported trading venue.
type Exchange string

const (
	ExchangeBinance Exchange = "binance"
	ExchangeBybit   Exchange = "bybit"
	ExchangeBitget  Exchange = "bitget"
	ExchangeMexc    Exchange = "mexc"
)

// SupportedExchanges lists every venue the bot can quote against.
var SupportedExchanges = []Exchange{ExchangeBinance, ExchangeBybit, ExchangeBitget, ExchangeMexc}

// IsValid reports whether the exchange is one of the supported venues.
func (e Exchange) IsValid() bool {
	switch e {
	case ExchangeBinance, ExchangeBybit, ExchangeBitget, ExchangeMexc:
		return true
	}
	return false
}

// Direction represents the side of a leveraged trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// IsValid reports whether the direction is long or short.
func (d Direction) IsValid() bool {
	return d == Long || d == Short
}

// Trade represents a tracked leveraged trade created by a user in a channel.
// MessageID is nil until the first successful render; ClosePrice is nil until
// the trade is closed. A closed trade never reopens.
type Trade struct {
	ID         string    // Deterministic key, see TradeID
	Ticker     string    // Trading symbol (e.g., "BTCUSDT")
	Leverage   float64   // Leverage multiplier, always > 0
	Exchange   Exchange  // Venue the price is quoted from
	Direction  Direction // long or short
	EntryPrice float64   // User-declared entry price, always > 0
	StopLoss   float64   // Informational stop loss level
	TakeProfit float64   // Informational take profit level
	UserID     string    // Owner of the trade
	ChannelID  string    // Channel the trade embed lives in
	MessageID  *string   // ID of the rendered message, nil before first render
	Closed     bool      // Terminal flag, set exactly once
	ClosePrice *float64  // Quoted price at close time, set together with Closed
}

// TradeID derives the stable key for a trade. The same user may track several
// trades in one channel as long as they differ in ticker or direction; editing
// a trade with the same ticker and direction overwrites the existing record.
func TradeID(userID, channelID, ticker string, direction Direction) string {
	return fmt.Sprintf("%s-%s-%s-%s", userID, channelID, ticker, direction)
}

// IsOpen reports whether the trade is still active.
func (t *Trade) IsOpen() bool {
	return !t.Closed
}
