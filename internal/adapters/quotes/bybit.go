package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"tradeTrackerBot/internal/ports"
)

const bybitBaseURL = "https://api.bybit.com"

// BybitProvider implements ports.QuoteProvider against the Bybit v5 public
// ticker endpoint.
type BybitProvider struct {
	baseURL string
	client  *http.Client
	logger  ports.Logger
}

// NewBybitProvider creates a Bybit quote provider. baseURL overrides the
// default API endpoint when non-empty (used in tests).
func NewBybitProvider(logger ports.Logger, baseURL string) (*BybitProvider, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required for Bybit quote provider")
	}
	if baseURL == "" {
		baseURL = bybitBaseURL
	}
	return &BybitProvider{baseURL: baseURL, client: &http.Client{}, logger: logger}, nil
}

// LastPrice returns the most recent traded price for a symbol.
func (p *BybitProvider) LastPrice(ctx context.Context, symbol string) (float64, error) {
	query := url.Values{"category": {"spot"}, "symbol": {symbol}}
	body, err := getJSON(ctx, p.client, p.baseURL+"/v5/market/tickers?"+query.Encode())
	if err != nil {
		return 0, fmt.Errorf("bybit ticker for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}

	var resp struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
		Result  struct {
			List []struct {
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("bybit ticker decode for %s: %w: %w", symbol, ports.ErrQuoteUnavailable, err)
	}
	if resp.RetCode != 0 || len(resp.Result.List) == 0 {
		return 0, fmt.Errorf("bybit returned no ticker for %s (retCode=%d, retMsg=%q): %w",
			symbol, resp.RetCode, resp.RetMsg, ports.ErrQuoteUnavailable)
	}
	price, err := strconv.ParseFloat(resp.Result.List[0].LastPrice, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("bybit returned unusable price %q for %s: %w",
			resp.Result.List[0].LastPrice, symbol, ports.ErrQuoteUnavailable)
	}
	return price, nil
}

// getJSON performs a context-bound GET and returns the response body.
func getJSON(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
