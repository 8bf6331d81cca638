package repository

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
)

// Collector fetches market data from an exchange. Single-symbol failures are
// reported as errors; batch fetches return whatever subset succeeded.
type Collector interface {
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
	FetchBatch(ctx context.Context, symbols []string) ([]*models.Quote, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (*models.OHLCV, error)
	Trending(ctx context.Context, limit int) ([]*models.Quote, error)
}

// Transport delivers signals and summaries to the chat audience. The
// subscriber set is owned by the transport side; the engine only broadcasts
// to it. Implementations render domain records into their own wire format.
type Transport interface {
	PublishSignal(ctx context.Context, s *models.Signal) error
	BroadcastSignal(ctx context.Context, s *models.Signal) (delivered int, err error)
	PublishSummary(ctx context.Context, m *models.MarketSummary) error
	SubscriberCount(ctx context.Context) int
}

// SubscriberStore persists the opaque set of broadcast recipients.
type SubscriberStore interface {
	Add(ctx context.Context, id int64) (added bool, err error)
	Remove(ctx context.Context, id int64) (removed bool, err error)
	Contains(ctx context.Context, id int64) (bool, error)
	All(ctx context.Context) ([]int64, error)
	Count(ctx context.Context) (int64, error)
}

// EventPublisher forwards structured signals and summaries to downstream
// consumers (message bus). Failures are logged by callers, never fatal.
type EventPublisher interface {
	PublishSignal(ctx context.Context, s *models.Signal) error
	PublishSummary(ctx context.Context, m *models.MarketSummary) error
	Close() error
}

// TickArchive persists per-tick quote snapshots for later inspection.
// Signal history itself is deliberately not durable.
type TickArchive interface {
	ArchiveTick(ctx context.Context, ts time.Time, source string, quotes []*models.Quote, sentiment string) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records engine health counters.
type Metrics interface {
	RecordSignal(kind, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordTickDuration(seconds float64)
	RecordBroadcast(delivered int)
}
