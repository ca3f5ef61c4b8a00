package quotes

import (
	"context"
	"fmt"

	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"
)

// Registry maps each supported exchange to its quote provider. It is built
// once at process start and passed into the trade service, so no ambient
// venue-to-client state exists anywhere.
type Registry struct {
	providers map[domain.Exchange]ports.QuoteProvider
}

// NewRegistry creates a registry over the given providers.
func NewRegistry(providers map[domain.Exchange]ports.QuoteProvider) (*Registry, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one quote provider is required")
	}
	reg := make(map[domain.Exchange]ports.QuoteProvider, len(providers))
	for exchange, provider := range providers {
		if !exchange.IsValid() {
			return nil, fmt.Errorf("unsupported exchange %q in quote registry", exchange)
		}
		if provider == nil {
			return nil, fmt.Errorf("nil quote provider for exchange %q", exchange)
		}
		reg[exchange] = provider
	}
	return &Registry{providers: reg}, nil
}

// BaseURLs carries optional per-exchange endpoint overrides. An empty field
// keeps that venue's production endpoint.
type BaseURLs struct {
	Binance string
	Bybit   string
	Bitget  string
	Mexc    string
}

// NewDefaultRegistry wires providers for every supported exchange, applying
// any configured endpoint overrides.
func NewDefaultRegistry(logger ports.Logger, urls BaseURLs) (*Registry, error) {
	binanceProvider, err := NewBinanceProvider(logger, urls.Binance)
	if err != nil {
		return nil, err
	}
	bybitProvider, err := NewBybitProvider(logger, urls.Bybit)
	if err != nil {
		return nil, err
	}
	bitgetProvider, err := NewBitgetProvider(logger, urls.Bitget)
	if err != nil {
		return nil, err
	}
	mexcProvider, err := NewMexcProvider(logger, urls.Mexc)
	if err != nil {
		return nil, err
	}
	return NewRegistry(map[domain.Exchange]ports.QuoteProvider{
		domain.ExchangeBinance: binanceProvider,
		domain.ExchangeBybit:   bybitProvider,
		domain.ExchangeBitget:  bitgetProvider,
		domain.ExchangeMexc:    mexcProvider,
	})
}

// LastPrice looks up the provider for the exchange and fetches the latest
// traded price for the symbol.
func (r *Registry) LastPrice(ctx context.Context, exchange domain.Exchange, symbol string) (float64, error) {
	provider, ok := r.providers[exchange]
	if !ok {
		return 0, fmt.Errorf("no quote provider for exchange %q: %w", exchange, ports.ErrExchangeUnsupported)
	}
	return provider.LastPrice(ctx, symbol)
}
