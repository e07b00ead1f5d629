package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

type TxOptions struct {
	IsolationLevel sql.IsolationLevel
	MaxRetries     int
}

func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelDefault,
		MaxRetries:     3,
	}
}

type txKey struct{}

// Conn returns the transaction carried by ctx, or db when there is none.
// Repositories must obtain their handle through Conn.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// InTx reports whether ctx carries a transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

func begin(ctx context.Context, db *gorm.DB, opts TxOptions, fn func(ctx context.Context) error) error {
	run := func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}
	if opts.IsolationLevel == sql.LevelDefault {
		return db.WithContext(ctx).Transaction(run)
	}
	return db.WithContext(ctx).Transaction(run, &sql.TxOptions{Isolation: opts.IsolationLevel})
}

// WithTransaction runs fn in a single transaction. When ctx already carries
// one, fn joins it.
func WithTransaction(ctx context.Context, db *gorm.DB, opts TxOptions, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	return begin(ctx, db, opts, fn)
}

// WithRetry runs fn in a transaction and retries transient failures with
// exponential backoff and jitter. A caller already inside a transaction
// joins it without retry; the outermost call owns retries.
func WithRetry(ctx context.Context, db *gorm.DB, opts TxOptions, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	var lastErr error
	backoff := 50 * time.Millisecond

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := begin(ctx, db, opts, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == opts.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", opts.MaxRetries, err)
		}
		lastErr = err

		jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
		log.Printf("Retrying transaction after transient error (attempt %d): %v", attempt+1, err)

		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}

	return lastErr
}

// TxManager binds a database and retry policy for services.
type TxManager struct {
	db   *gorm.DB
	opts TxOptions
}

func NewTxManager(db *gorm.DB, opts TxOptions) *TxManager {
	return &TxManager{db: db, opts: opts}
}

// Do runs fn atomically, joining an outer transaction when present.
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithRetry(ctx, m.db, m.opts, fn)
}
