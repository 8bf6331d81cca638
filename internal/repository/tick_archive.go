package repository

import (
	"context"
	"fmt"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/clickhouse"
)

// ClickHouseTickArchive persists per-tick quote snapshots for later
// inspection and offline analysis. Signals themselves are not archived.
type ClickHouseTickArchive struct {
	client *clickhouse.Client
	table  string
}

// NewClickHouseTickArchive creates the archive and ensures its table exists.
func NewClickHouseTickArchive(ctx context.Context, client *clickhouse.Client) (*ClickHouseTickArchive, error) {
	a := &ClickHouseTickArchive{client: client, table: "market_ticks"}
	if err := client.InitSchema(ctx, a.schema()); err != nil {
		return nil, fmt.Errorf("tick archive schema: %w", err)
	}
	return a, nil
}

func (a *ClickHouseTickArchive) schema() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			ts              DateTime,
			source          LowCardinality(String),
			symbol          LowCardinality(String),
			price           Float64,
			change_percent  Float64,
			high_24h        Float64,
			low_24h         Float64,
			volume_24h      Float64,
			volume_quote24h Float64,
			bid             Float64,
			ask             Float64,
			sentiment       LowCardinality(String)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(ts)
		ORDER BY (symbol, ts)
		TTL ts + INTERVAL 90 DAY`, a.table),
	}
}

// ArchiveTick writes one row per quote in a single batch.
func (a *ClickHouseTickArchive) ArchiveTick(ctx context.Context, ts time.Time, source string, quotes []*models.Quote, sentiment string) error {
	if len(quotes) == 0 {
		return nil
	}

	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (ts, source, symbol, price, change_percent, high_24h, low_24h, volume_24h, volume_quote24h, bid, ask, sentiment)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, a.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		if _, err := stmt.ExecContext(ctx,
			ts, source, q.Symbol, q.Price, q.ChangePercent,
			q.High24h, q.Low24h, q.Volume24h, q.VolumeQuote24h,
			q.Bid, q.Ask, sentiment,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("append row %s: %w", q.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Health pings the underlying connection pool.
func (a *ClickHouseTickArchive) Health(ctx context.Context) error {
	return a.client.Health(ctx)
}

// Close releases the connection pool.
func (a *ClickHouseTickArchive) Close() error {
	return a.client.Close()
}
