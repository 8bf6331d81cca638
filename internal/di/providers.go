package di

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"

	"CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/internal/handler/api"
	irepo "CoinPulse/internal/repository"
	"CoinPulse/internal/service/binance"
	"CoinPulse/internal/service/telegram"
	"CoinPulse/internal/services/narrative"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/cache"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
	"CoinPulse/pkg/metrics"
	"CoinPulse/pkg/server"
)

// ProviderSet is the full application dependency graph.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideCache,
	ProvideMetrics,
	ProvideCollector,
	ProvideStream,
	ProvideSubscriberStore,
	ProvideBot,
	ProvideNarrator,
	ProvideClassifier,
	ProvideRiskAssessor,
	ProvideGenerator,
	ProvideAggregator,
	ProvideEventPublisher,
	ProvideTickArchive,
	ProvideMonitor,
	ProvideAPIHandler,
	ProvideApp,
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideCache returns the shared cache, Redis when configured, in-process
// memory otherwise.
func ProvideCache(cfg *config.Config, log *applogger.Logger) cache.Service {
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
		)
		if err == nil {
			return rc
		}
		log.Warn("redis unavailable, using in-memory cache", applogger.Error(err))
	}
	return cache.NewMemoryCache()
}

// ProvideMetrics registers and returns the Prometheus recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.NewRecorder()
}

// ProvideCollector builds the exchange client with the shared quote cache.
func ProvideCollector(cfg *config.Config, svc cache.Service, log *applogger.Logger) repository.Collector {
	opts := []binance.Option{
		binance.WithCache(svc, cfg.Binance.QuoteTTL),
	}
	if cfg.Binance.BaseURL != "" {
		opts = append(opts, binance.WithBaseURL(cfg.Binance.BaseURL))
	}
	return binance.NewClient(log, opts...)
}

// ProvideStream builds the websocket cache primer, nil when disabled.
func ProvideStream(cfg *config.Config, svc cache.Service, log *applogger.Logger) *binance.Stream {
	if !cfg.Binance.UseStream {
		return nil
	}
	var opts []binance.StreamOption
	if cfg.Binance.StreamURL != "" {
		opts = append(opts, binance.WithStreamURL(cfg.Binance.StreamURL))
	}
	return binance.NewStream(cfg.Monitor.Watchlist, svc, cfg.Binance.QuoteTTL, log, opts...)
}

// ProvideSubscriberStore keeps subscriptions in Redis when available so they
// survive restarts, in memory otherwise.
func ProvideSubscriberStore(svc cache.Service) repository.SubscriberStore {
	if rc, ok := svc.(*cache.RedisCache); ok {
		return irepo.NewRedisSubscriberStore(rc.Client())
	}
	return irepo.NewMemorySubscriberStore()
}

// ProvideBot builds the Telegram transport, nil when disabled.
func ProvideBot(cfg *config.Config, store repository.SubscriberStore, log *applogger.Logger) *telegram.Bot {
	if !cfg.Telegram.Enabled || cfg.Telegram.BotToken == "" {
		return nil
	}
	var opts []telegram.BotOption
	if cfg.Telegram.SendDelay > 0 {
		opts = append(opts, telegram.WithSendDelay(cfg.Telegram.SendDelay))
	}
	return telegram.NewBot(cfg.Telegram.BotToken, cfg.Telegram.ChannelID, store, log, opts...)
}

// ProvideNarrator picks the model-backed narrator when configured; it falls
// back to rule templates internally on failures.
func ProvideNarrator(cfg *config.Config, collector repository.Collector, log *applogger.Logger) domsvc.Narrator {
	if !cfg.LLM.Enabled {
		return narrative.NewRuleNarrator()
	}
	return narrative.NewLLMNarrator(narrative.LLMConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, xhttp.NewClient(xhttp.WithTimeout(30*time.Second)), collector, log)
}

// ProvideClassifier builds the event classifier from configured thresholds.
func ProvideClassifier(cfg *config.Config) *usecase.Classifier {
	return usecase.NewClassifier(usecase.Thresholds{
		BigMovePct:       cfg.Thresholds.BigMovePct,
		ExtremeMovePct:   cfg.Thresholds.ExtremeMovePct,
		VolumeSpikeRatio: cfg.Thresholds.VolumeSpikeRatio,
	})
}

// ProvideRiskAssessor builds the risk assessor with default tunables.
func ProvideRiskAssessor() *usecase.RiskAssessor {
	return usecase.NewRiskAssessor(usecase.RiskConfig{})
}

// ProvideGenerator assembles the signal generator.
func ProvideGenerator(classifier *usecase.Classifier, risk *usecase.RiskAssessor, narrator domsvc.Narrator) *usecase.SignalGenerator {
	return usecase.NewSignalGenerator(classifier, risk, narrator)
}

// ProvideAggregator assembles the market aggregator.
func ProvideAggregator(classifier *usecase.Classifier) *usecase.MarketAggregator {
	return usecase.NewMarketAggregator(classifier, usecase.DefaultSentimentBands(), "BTC/USDT")
}

// ProvideEventPublisher builds the Kafka publisher, nil when disabled.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithAsync(cfg.Kafka.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return irepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalTopic, cfg.Kafka.SummaryTopic), nil
}

// ProvideTickArchive builds the ClickHouse archive, nil when disabled.
func ProvideTickArchive(cfg *config.Config) (repository.TickArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, false),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return irepo.NewClickHouseTickArchive(ctx, client)
}

// ProvideMonitor assembles the scheduler.
func ProvideMonitor(
	cfg *config.Config,
	collector repository.Collector,
	aggregator *usecase.MarketAggregator,
	generator *usecase.SignalGenerator,
	bot *telegram.Bot,
	events repository.EventPublisher,
	archive repository.TickArchive,
	mets repository.Metrics,
	log *applogger.Logger,
) *usecase.Monitor {
	var transport repository.Transport
	if bot != nil {
		transport = bot
	}
	return usecase.NewMonitor(collector, aggregator, generator, transport, events, archive, mets, log, usecase.MonitorConfig{
		Watchlist:           cfg.Monitor.Watchlist,
		CheckInterval:       cfg.Monitor.CheckInterval,
		SummaryEveryHours:   cfg.Monitor.SummaryEveryHours,
		SummaryMinuteWindow: cfg.Monitor.SummaryMinuteWindow,
		HistorySize:         cfg.Monitor.HistorySize,
	})
}

// ProvideAPIHandler wires the HTTP API.
func ProvideAPIHandler(
	collector repository.Collector,
	generator *usecase.SignalGenerator,
	aggregator *usecase.MarketAggregator,
	monitor *usecase.Monitor,
	bot *telegram.Bot,
	archive repository.TickArchive,
	log *applogger.Logger,
) xhttp.Handler {
	var transport repository.Transport
	if bot != nil {
		transport = bot
	}
	return api.NewHandler(collector, generator, aggregator, monitor, transport, archive, log)
}

// ProvideApp assembles the application and closes the bot/monitor status
// cycle.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.Monitor,
	stream *binance.Stream,
	bot *telegram.Bot,
	events repository.EventPublisher,
	archive repository.TickArchive,
	handler xhttp.Handler,
) *server.App {
	if bot != nil {
		bot.SetStatusFunc(func(ctx context.Context) string {
			return fmt.Sprintf(
				"🩺 Engine: %s\nTicks: %d\nWatchlist: %d symbols\nSubscribers: %d",
				monitor.State(), monitor.Ticks(), len(monitor.Watchlist()), bot.SubscriberCount(ctx),
			)
		})
	}
	return server.New(cfg, log, monitor, stream, bot, events, archive, handler)
}
