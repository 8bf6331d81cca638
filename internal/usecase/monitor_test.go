package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
)

type fakeCollector struct {
	quotes []*models.Quote
	err    error
}

func (f *fakeCollector) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	for _, q := range f.quotes {
		if q.Symbol == symbol {
			return q, nil
		}
	}
	return nil, fmt.Errorf("unknown symbol %s", symbol)
}

func (f *fakeCollector) FetchBatch(_ context.Context, _ []string) ([]*models.Quote, error) {
	return f.quotes, f.err
}

func (f *fakeCollector) FetchOHLCV(_ context.Context, _, _ string, _ int) (*models.OHLCV, error) {
	return &models.OHLCV{}, nil
}

func (f *fakeCollector) Trending(_ context.Context, _ int) ([]*models.Quote, error) {
	return nil, nil
}

type fakeTransport struct {
	mu        sync.Mutex
	published []*models.Signal
	broadcast []*models.Signal
	summaries []*models.MarketSummary
}

func (f *fakeTransport) PublishSignal(_ context.Context, s *models.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, s)
	return nil
}

func (f *fakeTransport) BroadcastSignal(_ context.Context, s *models.Signal) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, s)
	return 2, nil
}

func (f *fakeTransport) PublishSummary(_ context.Context, m *models.MarketSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, m)
	return nil
}

func (f *fakeTransport) SubscriberCount(_ context.Context) int { return 2 }

type fakeEvents struct {
	mu      sync.Mutex
	signals int
	fail    bool
}

func (f *fakeEvents) PublishSignal(_ context.Context, _ *models.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("broker down")
	}
	f.signals++
	return nil
}

func (f *fakeEvents) PublishSummary(_ context.Context, _ *models.MarketSummary) error { return nil }
func (f *fakeEvents) Close() error                                                    { return nil }

func testQuote(symbol string, change float64) *models.Quote {
	return &models.Quote{
		Symbol:        symbol,
		Price:         100,
		ChangePercent: change,
		High24h:       102,
		Low24h:        98,
		Timestamp:     time.Now().Unix(),
	}
}

func newTestMonitor(col *fakeCollector, tr *fakeTransport, ev *fakeEvents, cfg MonitorConfig) *Monitor {
	classifier := NewClassifier(Thresholds{})
	gen := NewSignalGenerator(classifier, NewRiskAssessor(RiskConfig{}), &stubNarrator{text: "test"})
	agg := NewMarketAggregator(classifier, DefaultSentimentBands(), "BTC/USDT")

	var transport repository.Transport
	if tr != nil {
		transport = tr
	}
	var events repository.EventPublisher
	if ev != nil {
		events = ev
	}
	return NewMonitor(col, agg, gen, transport, events, nil, metrics.Nop{}, logger.Nop(), cfg)
}

func TestRunOnceEmitsActiveSignals(t *testing.T) {
	col := &fakeCollector{quotes: []*models.Quote{
		testQuote("BTC/USDT", 1),   // neutral
		testQuote("ETH/USDT", 6),   // big rise
		testQuote("SOL/USDT", -12), // extreme drop
	}}
	tr := &fakeTransport{}
	ev := &fakeEvents{}
	m := newTestMonitor(col, tr, ev, MonitorConfig{Watchlist: []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}})

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}

	if got := m.History().Len(); got != 2 {
		t.Fatalf("history len = %d, want 2 active signals", got)
	}
	if len(tr.published) != 2 || len(tr.broadcast) != 2 {
		t.Fatalf("published/broadcast = %d/%d, want 2/2", len(tr.published), len(tr.broadcast))
	}
	if ev.signals != 2 {
		t.Fatalf("event publishes = %d, want 2", ev.signals)
	}
	if m.Ticks() != 1 {
		t.Fatalf("ticks = %d, want 1", m.Ticks())
	}
}

func TestRunOncePartialBatch(t *testing.T) {
	// 3 of 5 symbols arrive, with an error describing the rest
	col := &fakeCollector{
		quotes: []*models.Quote{
			testQuote("BTC/USDT", 7),
			testQuote("ETH/USDT", 0),
			testQuote("BNB/USDT", -6),
		},
		err: fmt.Errorf("fetch batch: 2/5 symbols failed"),
	}
	tr := &fakeTransport{}
	m := newTestMonitor(col, tr, nil, MonitorConfig{
		Watchlist: []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "SOL/USDT", "XRP/USDT"},
	})

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("partial batch must not fail the tick: %v", err)
	}
	if got := m.History().Len(); got != 2 {
		t.Fatalf("history len = %d, want 2", got)
	}
}

func TestRunOnceEmptyBatchFails(t *testing.T) {
	col := &fakeCollector{err: fmt.Errorf("exchange unreachable")}
	m := newTestMonitor(col, nil, nil, MonitorConfig{Watchlist: []string{"BTC/USDT"}})

	if err := m.RunOnce(context.Background()); err == nil {
		t.Fatalf("empty batch with error must surface from RunOnce")
	}
	if m.Ticks() != 1 {
		t.Fatalf("failed tick still counts, got %d", m.Ticks())
	}
}

func TestTickFailuresDoNotStopRun(t *testing.T) {
	col := &fakeCollector{err: fmt.Errorf("exchange unreachable")}
	m := newTestMonitor(col, nil, nil, MonitorConfig{
		Watchlist:     []string{"BTC/USDT"},
		CheckInterval: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// let a few failing ticks pass, then stop
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop after cancellation")
	}
	if m.Ticks() < 2 {
		t.Fatalf("ticks = %d, want the loop to survive failures", m.Ticks())
	}
	if m.State() != StateStopped {
		t.Fatalf("state = %v, want stopped", m.State())
	}
}

func TestStopWithinASecond(t *testing.T) {
	col := &fakeCollector{quotes: []*models.Quote{testQuote("BTC/USDT", 0)}}
	m := newTestMonitor(col, nil, nil, MonitorConfig{
		Watchlist:     []string{"BTC/USDT"},
		CheckInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(100 * time.Millisecond) // let the first tick start
	start := time.Now()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop")
	}
	if elapsed := time.Since(start); elapsed > 1500*time.Millisecond {
		t.Fatalf("stop took %v, want about a second at most", elapsed)
	}
}

func TestRunNotRestartableWhileRunning(t *testing.T) {
	col := &fakeCollector{quotes: []*models.Quote{testQuote("BTC/USDT", 0)}}
	m := newTestMonitor(col, nil, nil, MonitorConfig{
		Watchlist:     []string{"BTC/USDT"},
		CheckInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := m.Run(ctx); err == nil {
		t.Fatalf("second Run while running must fail")
	}
}

func TestHistoryCapacityFromConfig(t *testing.T) {
	col := &fakeCollector{quotes: []*models.Quote{
		testQuote("A/USDT", 6), testQuote("B/USDT", 6), testQuote("C/USDT", 6),
	}}
	m := newTestMonitor(col, nil, nil, MonitorConfig{
		Watchlist:   []string{"A/USDT", "B/USDT", "C/USDT"},
		HistorySize: 2,
	})

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if got := m.History().Len(); got != 2 {
		t.Fatalf("history len = %d, want capacity cap 2", got)
	}
}

func TestEventPublishFailureIsNonFatal(t *testing.T) {
	col := &fakeCollector{quotes: []*models.Quote{testQuote("BTC/USDT", 11)}}
	tr := &fakeTransport{}
	ev := &fakeEvents{fail: true}
	m := newTestMonitor(col, tr, ev, MonitorConfig{Watchlist: []string{"BTC/USDT"}})

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("broker failure must not fail the tick: %v", err)
	}
	if len(tr.published) != 1 {
		t.Fatalf("transport publish must still happen, got %d", len(tr.published))
	}
}
