// Package postgres archives extracted transactions in a PostgreSQL database.
// Rows are keyed by the Gmail message ID, so re-running over the same mailbox
// updates in place instead of duplicating.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ayane-dev/sbireport/pkg/api"
)

//go:embed 001_create_transactions.sql
var migrationSQL string

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// Archiver stores transactions in PostgreSQL.
type Archiver struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to the database, verifies the connection and applies the
// schema migration.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Archiver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 4
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	a := &Archiver{pool: pool, logger: logger}

	if err := a.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migration: %w", err)
	}

	return a, nil
}

func (a *Archiver) migrate(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, migrationSQL); err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

// Store upserts the given transactions in one database transaction.
// Entries without an email ID cannot be deduplicated and are skipped.
func (a *Archiver) Store(ctx context.Context, transactions []api.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	queued := 0
	for _, txn := range transactions {
		if txn.EmailID == "" {
			a.logger.Warn("skipping transaction without email ID",
				"merchant", txn.Merchant,
				"datetime", txn.TransactionDateTime,
			)
			continue
		}

		transactionAt, err := time.ParseInLocation(api.DateTimeLayout, txn.TransactionDateTime, time.Local)
		if err != nil {
			a.logger.Warn("skipping transaction with unparseable datetime",
				"email_id", txn.EmailID,
				"datetime", txn.TransactionDateTime,
			)
			continue
		}

		var emailReceivedAt *time.Time
		if txn.EmailDate != "" {
			if ts, err := time.ParseInLocation(api.DateTimeLayout, txn.EmailDate, time.Local); err == nil {
				emailReceivedAt = &ts
			}
		}

		currency := txn.Currency
		if currency == "" {
			currency = "JPY"
		}

		batch.Queue(`
			INSERT INTO transactions (
				email_id, transaction_at, merchant, amount, currency,
				auth_number, email_received_at
			) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
			ON CONFLICT (email_id) DO UPDATE SET
				transaction_at = EXCLUDED.transaction_at,
				merchant = EXCLUDED.merchant,
				amount = EXCLUDED.amount,
				currency = EXCLUDED.currency,
				auth_number = EXCLUDED.auth_number,
				email_received_at = EXCLUDED.email_received_at,
				updated_at = NOW()
		`,
			txn.EmailID,
			transactionAt,
			txn.Merchant,
			txn.Amount,
			currency,
			txn.AuthNumber,
			emailReceivedAt,
		)
		queued++
	}

	if queued == 0 {
		return nil
	}

	results := tx.SendBatch(ctx, batch)
	for i := 0; i < queued; i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("upserting transaction %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	a.logger.Info("archived transactions", "count", queued)
	return nil
}

// Close closes the connection pool.
func (a *Archiver) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
