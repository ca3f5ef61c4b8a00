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

const bitgetBaseURL = "https://api.bitget.com"

// BitgetProvider implements ports.QuoteProvider against the Bitget v2 public
// ticker endpoint.
type BitgetProvider struct {
	baseURL string
	client  *http.Client
	logger  ports.Logger
}

// NewBitgetProvider creates a Bitget quote provider. baseURL overrides the
// default API endpoint when non-empty (used in tests).
func NewBitgetProvider(logger ports.Logger, baseURL string) (*BitgetProvider, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for Bitget quote provider")
	}
	if baseURL == "" {
		baseURL = bitgetBaseURL
	}
	return &BitgetProvider{baseURL: baseURL, client: &http.Client{}, logger: logger}, nil
}

// LastPrice returns the most recent traded price for a symbol.
func (p *BitgetProvider) LastPrice(ctx context.Context, symbol string) (float64, error) {
	query := url.Values{"symbol": {symbol}}
	body, err := getJSON(ctx, p.client, p.baseURL+"/api/v2/spot/market/tickers?"+query.Encode())
	if err != nil {
		return 0, fmt.Errorf("bitget ticker for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}

	var resp struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
		Data []struct {
			LastPr string `json:"lastPr"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("bitget ticker decode for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}
	if resp.Code != "00000" || len(resp.Data) == 0 {
		return 0, fmt.Errorf("bitget returned no ticker for %s (code=%s, msg=%q): %w",
			symbol, resp.Code, resp.Msg, ports.ErrQuoteUnavailable)
	}
	price, err := strconv.ParseFloat(resp.Data[0].LastPr, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("bitget returned unusable price %q for %s: %w",
			resp.Data[0].LastPr, symbol, ports.ErrQuoteUnavailable)
	}
	return price, nil
}
