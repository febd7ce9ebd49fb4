package dbmetrics

import (
	"context"
	"database/sql"
	"time"
)

// DefaultCollectInterval период сбора статистики пула соединений
const DefaultCollectInterval = 15 * time.Second

// Metrics метрики, которые пишет обёртка
type Metrics interface {
	ObserveDBQuery(operation string, d time.Duration)
}

// PoolMetrics метрики пула соединений
type PoolMetrics interface {
	SetPoolStats(dbName string, stats sql.DBStats)
}

// DB обёртка над *sql.DB, замеряющая длительность запросов
type DB struct {
	*sql.DB
	metrics Metrics
}

// Wrap оборачивает *sql.DB без сбора статистики пула
func Wrap(db *sql.DB, metrics Metrics) *DB {
	return &DB{DB: db, metrics: metrics}
}

// WrapWithDefault оборачивает *sql.DB и запускает сбор статистики пула до закрытия stopCh
func WrapWithDefault(db *sql.DB, metrics Metrics, pool PoolMetrics, dbName string, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, metrics)
	if pool != nil {
		go collectPoolStats(db, pool, dbName, DefaultCollectInterval, stopCh)
	}
	return wrapped
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	defer d.observe("exec", time.Now())
	return d.DB.ExecContext(ctx, query, args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	defer d.observe("query", time.Now())
	return d.DB.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	defer d.observe("query_row", time.Now())
	return d.DB.QueryRowContext(ctx, query, args...)
}

// BeginTx начинает транзакцию и возвращает её как TxExecutor
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	defer d.observe("begin", time.Now())
	tx, err := d.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (d *DB) observe(operation string, start time.Time) {
	if d.metrics == nil {
		return
	}
	d.metrics.ObserveDBQuery(operation, time.Since(start))
}

func collectPoolStats(db *sql.DB, pool PoolMetrics, dbName string, interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			pool.SetPoolStats(dbName, db.Stats())
		}
	}
}
