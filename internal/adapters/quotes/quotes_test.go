package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestBybitProvider_LastPrice(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		status    int
		wantPrice float64
		wantErr   bool
	}{
		{
			name:      "valid ticker",
			response:  `{"retCode":0,"retMsg":"OK","result":{"list":[{"lastPrice":"50500.5"}]}}`,
			status:    http.StatusOK,
			wantPrice: 50500.5,
		},
		{
			name:     "unknown symbol",
			response: `{"retCode":10001,"retMsg":"params error: Symbol Invalid","result":{"list":[]}}`,
			status:   http.StatusOK,
			wantErr:  true,
		},
		{
			name:     "empty list",
			response: `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`,
			status:   http.StatusOK,
			wantErr:  true,
		},
		{
			name:     "unparsable price",
			response: `{"retCode":0,"retMsg":"OK","result":{"list":[{"lastPrice":"n/a"}]}}`,
			status:   http.StatusOK,
			wantErr:  true,
		},
		{
			name:     "server error",
			response: `{"retCode":0}`,
			status:   http.StatusInternalServerError,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v5/market/tickers", r.URL.Path)
				assert.Equal(t, "spot", r.URL.Query().Get("category"))
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			provider, err := NewBybitProvider(&mockLogger{}, srv.URL)
			require.NoError(t, err)

			price, err := provider.LastPrice(context.Background(), "BTCUSDT")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ports.ErrQuoteUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}

func TestBitgetProvider_LastPrice(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantPrice float64
		wantErr   bool
	}{
		{
			name:      "valid ticker",
			response:  `{"code":"00000","msg":"success","data":[{"lastPr":"50500.5"}]}`,
			wantPrice: 50500.5,
		},
		{
			name:     "error code",
			response: `{"code":"40034","msg":"Parameter symbol does not exist","data":[]}`,
			wantErr:  true,
		},
		{
			name:     "empty data",
			response: `{"code":"00000","msg":"success","data":[]}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v2/spot/market/tickers", r.URL.Path)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			provider, err := NewBitgetProvider(&mockLogger{}, srv.URL)
			require.NoError(t, err)

			price, err := provider.LastPrice(context.Background(), "BTCUSDT")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ports.ErrQuoteUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}

func TestMexcProvider_LastPrice(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		wantPrice float64
		wantErr   bool
	}{
		{
			name:      "valid ticker",
			response:  `{"symbol":"BTCUSDT","price":"50500.5"}`,
			wantPrice: 50500.5,
		},
		{
			name:     "missing price",
			response: `{"symbol":"BTCUSDT"}`,
			wantErr:  true,
		},
		{
			name:     "unparsable price",
			response: `{"symbol":"BTCUSDT","price":"oops"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			provider, err := NewMexcProvider(&mockLogger{}, srv.URL)
			require.NoError(t, err)

			price, err := provider.LastPrice(context.Background(), "BTCUSDT")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ports.ErrQuoteUnavailable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, price)
		})
	}
}

func TestProvider_ContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"50500.5"}`))
	}))
	defer srv.Close()

	provider, err := NewMexcProvider(&mockLogger{}, srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = provider.LastPrice(ctx, "BTCUSDT")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrQuoteUnavailable)
}

func TestRegistry_LookupAndUnknownVenue(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"123.45"}`))
	}))
	defer srv.Close()

	provider, err := NewMexcProvider(&mockLogger{}, srv.URL)
	require.NoError(t, err)

	registry, err := NewRegistry(map[domain.Exchange]ports.QuoteProvider{
		domain.ExchangeMexc: provider,
	})
	require.NoError(t, err)

	price, err := registry.LastPrice(context.Background(), domain.ExchangeMexc, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 123.45, price)

	_, err = registry.LastPrice(context.Background(), domain.ExchangeBybit, "BTCUSDT")
	assert.ErrorIs(t, err, ports.ErrExchangeUnsupported)
}

func TestNewDefaultRegistry_HonorsBaseURLOverrides(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"777.5"}`))
	}))
	defer srv.Close()

	registry, err := NewDefaultRegistry(&mockLogger{}, BaseURLs{Mexc: srv.URL})
	require.NoError(t, err)

	price, err := registry.LastPrice(context.Background(), domain.ExchangeMexc, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 777.5, price)
}

func TestProviders_EscapeSymbolInQuery(t *testing.T) {
	var gotSymbol string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSymbol = r.URL.Query().Get("symbol")
		w.Write([]byte(`{"symbol":"BTC USDT","price":"1.5"}`))
	}))
	defer srv.Close()

	provider, err := NewMexcProvider(&mockLogger{}, srv.URL)
	require.NoError(t, err)

	_, err = provider.LastPrice(context.Background(), "BTC USDT&x=1")
	require.NoError(t, err)
	assert.Equal(t, "BTC USDT&x=1", gotSymbol,
		"the raw symbol must survive URL encoding intact instead of splitting the query")
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)

	_, err = NewRegistry(map[domain.Exchange]ports.QuoteProvider{
		domain.Exchange("kraken"): &MexcProvider{},
	})
	assert.Error(t, err)

	_, err = NewRegistry(map[domain.Exchange]ports.QuoteProvider{
		domain.ExchangeMexc: nil,
	})
	assert.Error(t, err)
}
