package quotes

import (
	"context"
	"fmt"
	"strconv"

	"tradeTrackerBot/internal/ports"

	"github.com/adshao/go-binance/v2"
)

// BinanceProvider implements ports.QuoteProvider using the go-binance client.
// Only the public ticker endpoint is used, so no API keys are required.
type BinanceProvider struct {
	client *binance.Client
	logger ports.Logger
}

// NewBinanceProvider creates a Binance quote provider. baseURL overrides the
// default API endpoint when non-empty (used in tests).
func NewBinanceProvider(logger ports.Logger, baseURL string) (*BinanceProvider, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for Binance quote provider")
	}
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}
	return &BinanceProvider{client: client, logger: logger}, nil
}

// LastPrice returns the most recent traded price for a symbol.
func (p *BinanceProvider) LastPrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := p.client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("binance ticker for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}
	if len(prices) == 0 {
		return 0, fmt.Errorf("binance returned no ticker for %s: %w", symbol, ports.ErrQuoteUnavailable)
	}
	price, err := strconv.ParseFloat(prices[0].Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("binance returned unusable price %q for %s: %w", prices[0].Price, symbol, ports.ErrQuoteUnavailable)
	}
	return price, nil
}
