package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/usecase"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

// Handler serves the public read-only API over the engine's state.
type Handler struct {
	collector  repository.Collector
	generator  *usecase.SignalGenerator
	aggregator *usecase.MarketAggregator
	monitor    *usecase.Monitor
	transport  repository.Transport   // optional
	archive    repository.TickArchive // optional
	log        *logger.Logger
}

// NewHandler wires the API handler.
func NewHandler(
	collector repository.Collector,
	generator *usecase.SignalGenerator,
	aggregator *usecase.MarketAggregator,
	monitor *usecase.Monitor,
	transport repository.Transport,
	archive repository.TickArchive,
	log *logger.Logger,
) *Handler {
	return &Handler{
		collector:  collector,
		generator:  generator,
		aggregator: aggregator,
		monitor:    monitor,
		transport:  transport,
		archive:    archive,
		log:        log,
	}
}

// RegisterRoutes implements xhttp.Handler.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/health", h.Health)
	g.GET("/market", h.Market)
	g.GET("/signals", h.RecentSignals)
	g.GET("/signals/:symbol", h.SymbolSignal)
	g.GET("/price/:symbol", h.Price)
	g.GET("/trending", h.Trending)
	g.GET("/ohlcv/:symbol", h.OHLCV)
}

// Health reports engine liveness and dependency status.
func (h *Handler) Health(c echo.Context) error {
	ctx := c.Request().Context()

	out := map[string]interface{}{
		"status":    "ok",
		"monitor":   h.monitor.State().String(),
		"ticks":     h.monitor.Ticks(),
		"watchlist": h.monitor.Watchlist(),
		"timestamp": time.Now().Unix(),
	}
	if h.transport != nil {
		out["subscribers"] = h.transport.SubscriberCount(ctx)
	}
	if h.archive != nil {
		archiveStatus := "ok"
		if err := h.archive.Health(ctx); err != nil {
			archiveStatus = "unavailable"
		}
		out["archive"] = archiveStatus
	}
	return xhttp.SuccessResponse(c, out)
}

// Market returns a fresh summary over the watchlist.
func (h *Handler) Market(c echo.Context) error {
	ctx := c.Request().Context()

	quotes, err := h.collector.FetchBatch(ctx, h.monitor.Watchlist())
	if err != nil && len(quotes) == 0 {
		h.log.Error("market fetch failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.SuccessResponse(c, h.aggregator.Summarize(quotes))
}

// RecentSignals returns the newest entries of the in-memory signal buffer.
func (h *Handler) RecentSignals(c echo.Context) error {
	req := new(models.RecentSignalsRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}

	signals := h.monitor.History().Recent(req.Limit)
	if since, ok := xhttp.ParseTime(c.QueryParam("since")); ok {
		filtered := signals[:0]
		for _, s := range signals {
			if s.Timestamp >= since.Unix() {
				filtered = append(filtered, s)
			}
		}
		signals = filtered
	}
	return xhttp.ListResponse(c, signals, int64(len(signals)))
}

// SymbolSignal generates a signal for one symbol on demand, regardless of
// whether the quote classifies as active.
func (h *Handler) SymbolSignal(c echo.Context) error {
	req := new(models.SymbolSignalRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	ctx := c.Request().Context()

	q, err := h.collector.FetchQuote(ctx, normalizeSymbol(req.Symbol))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown symbol %s", req.Symbol).WithError(err))
	}

	market := h.marketContext(ctx)
	return xhttp.SuccessResponse(c, h.generator.Generate(ctx, q, market))
}

// Price returns the normalized quote for one symbol.
func (h *Handler) Price(c echo.Context) error {
	req := new(models.PriceRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	ctx := c.Request().Context()

	q, err := h.collector.FetchQuote(ctx, normalizeSymbol(req.Symbol))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown symbol %s", req.Symbol).WithError(err))
	}
	return xhttp.SuccessResponse(c, q)
}

// Trending returns the highest-volume USDT pairs.
func (h *Handler) Trending(c echo.Context) error {
	req := new(models.TrendingRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	ctx := c.Request().Context()

	quotes, err := h.collector.Trending(ctx, req.Limit)
	if err != nil {
		h.log.Error("trending fetch failed", logger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	return xhttp.ListResponse(c, quotes, int64(len(quotes)))
}

// OHLCV returns candlesticks for one symbol.
func (h *Handler) OHLCV(c echo.Context) error {
	req := new(models.OHLCVRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	ctx := c.Request().Context()

	ohlcv, err := h.collector.FetchOHLCV(ctx, normalizeSymbol(req.Symbol), req.Timeframe, req.Limit)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("unknown symbol %s", req.Symbol).WithError(err))
	}
	return xhttp.SuccessResponse(c, ohlcv)
}

// marketContext fetches a best-effort summary for narration. Nil on failure;
// the generator tolerates that.
func (h *Handler) marketContext(ctx context.Context) *models.MarketSummary {
	quotes, err := h.collector.FetchBatch(ctx, h.monitor.Watchlist())
	if err != nil && len(quotes) == 0 {
		return nil
	}
	return h.aggregator.Summarize(quotes)
}

// normalizeSymbol accepts "BTC", "BTCUSDT" and "BTC/USDT" interchangeably.
func normalizeSymbol(s string) string {
	return models.CanonicalSymbol(s)
}
