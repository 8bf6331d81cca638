package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/service/binance"
	"CoinPulse/internal/service/telegram"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	applogger "CoinPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the monitor loop, the
// optional websocket stream and bot poller, and the HTTP server.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	monitor    *usecase.Monitor
	stream     *binance.Stream            // optional
	bot        *telegram.Bot              // optional
	events     repository.EventPublisher  // optional
	archive    repository.TickArchive     // optional
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. stream, bot, events
// and archive may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.Monitor,
	stream *binance.Stream,
	bot *telegram.Bot,
	events repository.EventPublisher,
	archive repository.TickArchive,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:     cfg,
		log:     log,
		monitor: monitor,
		stream:  stream,
		bot:     bot,
		events:  events,
		archive: archive,
		httpServer: xhttp.NewServer(httpHandler,
			xhttp.WithPort(cfg.Server.Port),
			xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		),
	}
}

// RunOnce executes a single monitoring tick and exits. Used by the -once
// flag for cron-style deployments.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.closeInfra()
	return a.monitor.RunOnce(ctx)
}

// Run starts all services and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	if a.stream != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.stream.Run(ctx)
		}()
		a.log.Info("ticker stream started")
	}

	if a.bot != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.bot.Poll(ctx)
		}()
		a.log.Info("bot command loop started")
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.monitor.Run(ctx); err != nil {
			a.log.Error("monitor error", applogger.Error(err))
		}
	}()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		cancel()
		wg.Wait()
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	wg.Wait()
	return a.shutdown()
}

// shutdown gracefully stops the HTTP server and closes infrastructure.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.closeInfra()
	a.log.Info("shutdown complete")
	return nil
}

func (a *App) closeInfra() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.log.Warn("tick archive close error", applogger.Error(err))
		}
	}
}
