package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/logger"
)

// Monitor lifecycle states.
type MonitorState int32

const (
	StateIdle MonitorState = iota
	StateRunning
	StateStopping
	StateStopped
)

func (s MonitorState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// MonitorConfig holds the scheduler tunables.
type MonitorConfig struct {
	Watchlist           []string
	CheckInterval       time.Duration // delay between ticks
	SummaryEveryHours   int           // wall-clock hour modulus for summary publication
	SummaryMinuteWindow int           // minutes past the hour during which a summary may fire
	HistorySize         int           // recent-signal buffer capacity
}

// DefaultMonitorConfig returns the standard scheduler tunables.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Watchlist:           []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "SOL/USDT", "XRP/USDT"},
		CheckInterval:       5 * time.Minute,
		SummaryEveryHours:   4,
		SummaryMinuteWindow: 5,
		HistorySize:         50,
	}
}

// Monitor drives the periodic fetch/classify/publish cycle. Single-goroutine
// sequential loop; cancellation is observed through the run context, at
// one-second granularity during the inter-tick sleep.
type Monitor struct {
	collector  repository.Collector
	aggregator *MarketAggregator
	generator  *SignalGenerator
	transport  repository.Transport      // optional
	events     repository.EventPublisher // optional
	archive    repository.TickArchive    // optional
	metrics    repository.Metrics
	history    *SignalHistory
	log        *logger.Logger
	cfg        MonitorConfig

	state           atomic.Int32
	lastSummaryHour atomic.Int64 // unix hour of the last published summary
	ticks           atomic.Int64
}

// NewMonitor wires the scheduler. transport, events and archive may be nil;
// the corresponding steps are skipped.
func NewMonitor(
	collector repository.Collector,
	aggregator *MarketAggregator,
	generator *SignalGenerator,
	transport repository.Transport,
	events repository.EventPublisher,
	archive repository.TickArchive,
	metrics repository.Metrics,
	log *logger.Logger,
	cfg MonitorConfig,
) *Monitor {
	def := DefaultMonitorConfig()
	if len(cfg.Watchlist) == 0 {
		cfg.Watchlist = def.Watchlist
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = def.CheckInterval
	}
	if cfg.SummaryEveryHours <= 0 {
		cfg.SummaryEveryHours = def.SummaryEveryHours
	}
	if cfg.SummaryMinuteWindow <= 0 {
		cfg.SummaryMinuteWindow = def.SummaryMinuteWindow
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}

	m := &Monitor{
		collector:  collector,
		aggregator: aggregator,
		generator:  generator,
		transport:  transport,
		events:     events,
		archive:    archive,
		metrics:    metrics,
		history:    NewSignalHistory(cfg.HistorySize),
		log:        log,
		cfg:        cfg,
	}
	m.lastSummaryHour.Store(-1)
	return m
}

// State reports the current lifecycle state.
func (m *Monitor) State() MonitorState {
	return MonitorState(m.state.Load())
}

// History exposes the recent-signal buffer for the HTTP API.
func (m *Monitor) History() *SignalHistory { return m.history }

// Watchlist returns the monitored symbols.
func (m *Monitor) Watchlist() []string { return m.cfg.Watchlist }

// Ticks returns the number of completed ticks.
func (m *Monitor) Ticks() int64 { return m.ticks.Load() }

// Run executes the monitoring loop until ctx is cancelled. It returns nil on
// clean shutdown and an error only when the monitor was not startable.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) &&
		!m.state.CompareAndSwap(int32(StateStopped), int32(StateRunning)) {
		return fmt.Errorf("monitor not startable from state %s", m.State())
	}

	m.log.Info("monitor started",
		logger.Strings("watchlist", m.cfg.Watchlist),
		logger.Duration("check_interval", m.cfg.CheckInterval),
	)

	for {
		if ctx.Err() != nil {
			break
		}
		if err := m.tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.log.Error("tick failed", logger.Error(err))
			m.metrics.RecordError("tick")
		}
		if !m.sleep(ctx) {
			break
		}
	}

	m.state.Store(int32(StateStopping))
	m.log.Info("monitor stopping")
	m.state.Store(int32(StateStopped))
	m.log.Info("monitor stopped", logger.Int64("ticks", m.ticks.Load()))
	return nil
}

// RunOnce executes exactly one tick. Used by the -once flag and tests.
func (m *Monitor) RunOnce(ctx context.Context) error {
	return m.tick(ctx)
}

// tick runs one full cycle: fetch, summarize, classify, publish, archive.
// Per-step failures are logged and do not abort the remainder of the tick.
func (m *Monitor) tick(ctx context.Context) error {
	start := time.Now()
	defer func() {
		m.ticks.Add(1)
		m.metrics.RecordTickDuration(time.Since(start).Seconds())
	}()

	quotes, err := m.collector.FetchBatch(ctx, m.cfg.Watchlist)
	if err != nil && len(quotes) == 0 {
		m.metrics.RecordError("fetch")
		return fmt.Errorf("fetch batch: %w", err)
	}
	if err != nil {
		// partial batch, keep going with what arrived
		m.log.Warn("partial quote batch",
			logger.Int("got", len(quotes)),
			logger.Int("want", len(m.cfg.Watchlist)),
			logger.Error(err),
		)
		m.metrics.RecordError("fetch_partial")
	}

	for _, q := range quotes {
		m.metrics.RecordLastPrice(q.Symbol, q.Price)
	}

	summary := m.aggregator.Summarize(quotes)

	active := 0
	for _, q := range quotes {
		if q.IsZero() || !m.generator.Classifier().IsActive(q) {
			continue
		}
		active++
		m.emit(ctx, q, summary)
	}

	m.maybePublishSummary(ctx, time.Now(), summary)

	if m.archive != nil {
		if err := m.archive.ArchiveTick(ctx, start, "binance", quotes, summary.Sentiment); err != nil {
			m.log.Error("tick archive failed", logger.Error(err))
			m.metrics.RecordError("archive")
		}
	}

	m.log.Debug("tick complete",
		logger.Int("quotes", len(quotes)),
		logger.Int("active", active),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// emit assembles and distributes the signal for one active quote.
func (m *Monitor) emit(ctx context.Context, q *models.Quote, summary *models.MarketSummary) {
	sig := m.generator.Generate(ctx, q, summary)
	m.history.Add(sig)
	m.metrics.RecordSignal(sig.Kind.String(), sig.Symbol)

	m.log.Info("signal emitted",
		logger.String("symbol", sig.Symbol),
		logger.String("kind", sig.Kind.String()),
		logger.String("risk", sig.Risk.String()),
		logger.Float64("change_percent", sig.ChangePercent),
	)

	if m.transport != nil {
		if err := m.transport.PublishSignal(ctx, sig); err != nil {
			m.log.Error("channel publish failed", logger.String("symbol", sig.Symbol), logger.Error(err))
			m.metrics.RecordError("publish")
		}
		delivered, err := m.transport.BroadcastSignal(ctx, sig)
		if err != nil {
			m.log.Error("broadcast failed", logger.String("symbol", sig.Symbol), logger.Error(err))
			m.metrics.RecordError("broadcast")
		}
		m.metrics.RecordBroadcast(delivered)
	}

	if m.events != nil {
		if err := m.events.PublishSignal(ctx, sig); err != nil {
			m.log.Error("event publish failed", logger.String("symbol", sig.Symbol), logger.Error(err))
			m.metrics.RecordError("event_publish")
		}
	}
}

// maybePublishSummary sends the market summary when the wall clock sits in
// the configured window (hour divisible by SummaryEveryHours, within the
// first SummaryMinuteWindow minutes). A per-hour latch prevents the window
// from firing twice when the check interval is shorter than the window.
func (m *Monitor) maybePublishSummary(ctx context.Context, now time.Time, summary *models.MarketSummary) {
	if !summary.OK() {
		return
	}
	if now.Hour()%m.cfg.SummaryEveryHours != 0 || now.Minute() >= m.cfg.SummaryMinuteWindow {
		return
	}
	if m.alreadyPublished(now.Unix() / 3600) {
		return
	}

	m.log.Info("publishing market summary", logger.String("sentiment", summary.Sentiment))

	if m.transport != nil {
		if err := m.transport.PublishSummary(ctx, summary); err != nil {
			m.log.Error("summary publish failed", logger.Error(err))
			m.metrics.RecordError("summary_publish")
		}
	}
	if m.events != nil {
		if err := m.events.PublishSummary(ctx, summary); err != nil {
			m.log.Error("summary event publish failed", logger.Error(err))
			m.metrics.RecordError("event_publish")
		}
	}
}

func (m *Monitor) alreadyPublished(unixHour int64) bool {
	last := m.lastSummaryHour.Load()
	if last == unixHour {
		return true
	}
	return !m.lastSummaryHour.CompareAndSwap(last, unixHour)
}

// sleep waits out the check interval in one-second increments so that
// cancellation is observed within a second. Returns false when ctx fired.
func (m *Monitor) sleep(ctx context.Context) bool {
	deadline := time.Now().Add(m.cfg.CheckInterval)
	for time.Now().Before(deadline) {
		step := time.Second
		if rest := time.Until(deadline); rest < step {
			step = rest
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(step):
		}
	}
	return true
}
