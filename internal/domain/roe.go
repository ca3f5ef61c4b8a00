package domain

// ROE computes the return on equity, in percent, for a leveraged trade.
// Long positions gain as price rises, short positions gain as it falls.
// The result is NaN when any input is NaN and divergent when entryPrice is
// zero; callers enforce entryPrice > 0 before calling.
func ROE(entryPrice, currentPrice, leverage float64, direction Direction) float64 {
	var priceChange float64
	if direction == Long {
		priceChange = (currentPrice - entryPrice) / entryPrice
	} else {
		priceChange = (entryPrice - currentPrice) / entryPrice
	}
	return priceChange * leverage * 100
}
