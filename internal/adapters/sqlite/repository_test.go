package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tradeTrackerBot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "trade-tracker-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func openTrade(id string) *domain.Trade {
	return &domain.Trade{
		ID:         id,
		Ticker:     "BTCUSDT",
		Leverage:   10,
		Exchange:   domain.ExchangeBybit,
		Direction:  domain.Long,
		EntryPrice: 50000,
		StopLoss:   48000,
		TakeProfit: 55000,
		UserID:     "user1",
		ChannelID:  "chan1",
	}
}

func TestRepository_SaveAndFind(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trade := openTrade("user1-chan1-BTCUSDT-long")
	require.NoError(t, repo.Save(ctx, trade))

	got, err := repo.Find(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, trade.ID, got.ID)
	assert.Equal(t, trade.Ticker, got.Ticker)
	assert.Equal(t, trade.Leverage, got.Leverage)
	assert.Equal(t, trade.Exchange, got.Exchange)
	assert.Equal(t, trade.Direction, got.Direction)
	assert.Equal(t, trade.EntryPrice, got.EntryPrice)
	assert.Equal(t, trade.StopLoss, got.StopLoss)
	assert.Equal(t, trade.TakeProfit, got.TakeProfit)
	assert.Equal(t, trade.UserID, got.UserID)
	assert.Equal(t, trade.ChannelID, got.ChannelID)
	assert.False(t, got.Closed)
	// Optional fields come back as nil, not as zero-value sentinels.
	assert.Nil(t, got.MessageID)
	assert.Nil(t, got.ClosePrice)
}

func TestRepository_SaveReplacesExisting(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trade := openTrade("user1-chan1-BTCUSDT-long")
	require.NoError(t, repo.Save(ctx, trade))

	trade.Leverage = 25
	trade.EntryPrice = 51000
	require.NoError(t, repo.Save(ctx, trade))

	got, err := repo.Find(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 25.0, got.Leverage)
	assert.Equal(t, 51000.0, got.EntryPrice)

	open, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1, "insert-or-replace must not duplicate the record")
}

func TestRepository_FindAbsent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	got, err := repo.Find(context.Background(), "no-such-trade")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_UpdateNonexistentIsNoOp(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	ghost := openTrade("user9-chan9-ETHUSDT-short")
	require.NoError(t, repo.Update(ctx, ghost))

	got, err := repo.Find(ctx, ghost.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "update must not create a record")

	open, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestRepository_FindOpenExcludesClosed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	openOne := openTrade("user1-chan1-BTCUSDT-long")
	require.NoError(t, repo.Save(ctx, openOne))

	closePrice := 49000.0
	closed := openTrade("user1-chan1-ETHUSDT-short")
	closed.Ticker = "ETHUSDT"
	closed.Direction = domain.Short
	closed.Closed = true
	closed.ClosePrice = &closePrice
	require.NoError(t, repo.Save(ctx, closed))

	open, err := repo.FindOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, openOne.ID, open[0].ID)
	for _, trade := range open {
		assert.False(t, trade.Closed)
	}
}

func TestRepository_UpdatePersistsCloseAndMessage(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	trade := openTrade("user1-chan1-BTCUSDT-long")
	require.NoError(t, repo.Save(ctx, trade))

	messageID := "msg-123"
	trade.MessageID = &messageID
	require.NoError(t, repo.Update(ctx, trade))

	closePrice := 52500.0
	trade.Closed = true
	trade.ClosePrice = &closePrice
	require.NoError(t, repo.Update(ctx, trade))

	got, err := repo.Find(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.MessageID)
	assert.Equal(t, messageID, *got.MessageID)
	assert.True(t, got.Closed)
	require.NotNil(t, got.ClosePrice)
	assert.Equal(t, closePrice, *got.ClosePrice)
}

func TestRepository_SurvivesReopen(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "trade-tracker-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")
	ctx := context.Background()

	repo, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	trade := openTrade("user1-chan1-BTCUSDT-long")
	require.NoError(t, repo.Save(ctx, trade))
	require.NoError(t, repo.Close())

	reopened, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Find(ctx, trade.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, trade.EntryPrice, got.EntryPrice)
}
