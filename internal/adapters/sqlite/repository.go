package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradeTrackerBot/internal/domain"
	"tradeTrackerBot/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trades.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// SQLite handles concurrency internally, the Go driver benefits from limiting connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite database ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		trade_id TEXT PRIMARY KEY,
		ticker TEXT NOT NULL,
		leverage REAL NOT NULL,
		exchange TEXT NOT NULL,
		direction TEXT NOT NULL,
		entry_price REAL NOT NULL,
		stop_loss REAL NOT NULL,
		take_profit REAL NOT NULL,
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		message_id TEXT,
		closed INTEGER NOT NULL DEFAULT 0,
		close_price REAL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_closed ON trades (closed);
	CREATE INDEX IF NOT EXISTS idx_trades_user_channel ON trades (user_id, channel_id);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Save inserts or fully replaces a trade record.
func (r *Repository) Save(ctx context.Context, trade *domain.Trade) error {
	const query = `
	INSERT OR REPLACE INTO trades (
		trade_id, ticker, leverage, exchange, direction, entry_price,
		stop_loss, take_profit, user_id, channel_id, message_id, closed, close_price
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		trade.ID, trade.Ticker, trade.Leverage, trade.Exchange, trade.Direction,
		trade.EntryPrice, trade.StopLoss, trade.TakeProfit, trade.UserID, trade.ChannelID,
		nullString(trade.MessageID), boolToInt(trade.Closed), nullFloat(trade.ClosePrice))
	if err != nil {
		return fmt.Errorf("failed to save trade %s: %w: %w", trade.ID, ports.ErrQueryFailed, err)
	}
	r.logger.Debug(ctx, "Trade saved", map[string]interface{}{"tradeID": trade.ID, "ticker": trade.Ticker})
	return nil
}

// Find retrieves a trade by its ID. Returns nil, nil when absent.
func (r *Repository) Find(ctx context.Context, tradeID string) (*domain.Trade, error) {
	const query = `
	SELECT trade_id, ticker, leverage, exchange, direction, entry_price,
	       stop_loss, take_profit, user_id, channel_id, message_id, closed, close_price
	FROM trades
	WHERE trade_id = ?`

	row := r.db.QueryRowContext(ctx, query, tradeID)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found", map[string]interface{}{"tradeID": tradeID})
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query trade %s: %w: %w", tradeID, ports.ErrQueryFailed, err)
	}
	return trade, nil
}

// FindOpen retrieves all trades that are not closed.
func (r *Repository) FindOpen(ctx context.Context) ([]*domain.Trade, error) {
	const query = `
	SELECT trade_id, ticker, leverage, exchange, direction, entry_price,
	       stop_loss, take_profit, user_id, channel_id, message_id, closed, close_price
	FROM trades
	WHERE closed = 0`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open trades: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindOpen: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// Update overwrites the full record for an existing trade ID. Updating an
// unknown ID affects zero rows and is not treated as an error.
func (r *Repository) Update(ctx context.Context, trade *domain.Trade) error {
	const query = `
	UPDATE trades SET
		ticker = ?, leverage = ?, exchange = ?, direction = ?, entry_price = ?,
		stop_loss = ?, take_profit = ?, user_id = ?, channel_id = ?,
		message_id = ?, closed = ?, close_price = ?
	WHERE trade_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		trade.Ticker, trade.Leverage, trade.Exchange, trade.Direction, trade.EntryPrice,
		trade.StopLoss, trade.TakeProfit, trade.UserID, trade.ChannelID,
		nullString(trade.MessageID), boolToInt(trade.Closed), nullFloat(trade.ClosePrice),
		trade.ID)
	if err != nil {
		return fmt.Errorf("failed to update trade %s: %w: %w", trade.ID, ports.ErrUpdateFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for update of trade %s: %w", trade.ID, err)
	}
	if rowsAffected == 0 {
		r.logger.Debug(ctx, "Update skipped, trade does not exist", map[string]interface{}{"tradeID": trade.ID})
	}
	return nil
}

// --- Helpers ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade, converting the NULL sentinels for
// message_id and close_price into nil pointers at the storage edge so they
// never leak into the service layer.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var exchange, direction string
	var messageID sql.NullString
	var closed int
	var closePrice sql.NullFloat64
	err := s.Scan(
		&t.ID, &t.Ticker, &t.Leverage, &exchange, &direction, &t.EntryPrice,
		&t.StopLoss, &t.TakeProfit, &t.UserID, &t.ChannelID, &messageID, &closed, &closePrice)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Exchange = domain.Exchange(exchange)
	t.Direction = domain.Direction(direction)
	t.Closed = closed != 0
	if messageID.Valid {
		t.MessageID = &messageID.String
	}
	if closePrice.Valid {
		t.ClosePrice = &closePrice.Float64
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
