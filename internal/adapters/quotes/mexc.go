package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"tradeTrackerBot/internal/ports"
)

const mexcBaseURL = "https://api.mexc.com"

// MexcProvider implements ports.QuoteProvider against the MEXC spot public
// ticker endpoint.
type MexcProvider struct {
	baseURL string
	client  *http.Client
	logger  ports.Logger
}

// NewMexcProvider creates a MEXC quote provider. baseURL overrides the
// default API endpoint when non-empty (used in tests).
func NewMexcProvider(logger ports.Logger, baseURL string) (*MexcProvider, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for MEXC quote provider")
	}
	if baseURL == "" {
		baseURL = mexcBaseURL
	}
	return &MexcProvider{baseURL: baseURL, client: &http.Client{}, logger: logger}, nil
}

// LastPrice returns the most recent traded price for a symbol.
func (p *MexcProvider) LastPrice(ctx context.Context, symbol string) (float64, error) {
	query := url.Values{"symbol": {symbol}}
	body, err := getJSON(ctx, p.client, p.baseURL+"/api/v3/ticker/price?"+query.Encode())
	if err != nil {
		return 0, fmt.Errorf("mexc ticker for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("mexc ticker decode for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}
	price, err := strconv.ParseFloat(resp.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("mexc returned unusable price %q for %s: %w", resp.Price, symbol, ports.ErrQuoteUnavailable)
	}
	return price, nil
}
