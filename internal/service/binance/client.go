package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/cache"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

const defaultBaseURL = "https://api.binance.com"

// quoteTTL bounds how stale a cached quote may be served.
const defaultQuoteTTL = 10 * time.Second

// Client fetches market data from the Binance public REST API. It keeps a
// short-lived quote cache so that the monitor loop, the HTTP API and the
// websocket stream share one view of the market.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	cache    cache.Service
	quoteTTL time.Duration
	log      *logger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used by tests and mirrors.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithCache attaches a quote cache with the given TTL.
func WithCache(svc cache.Service, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = svc
		if ttl > 0 {
			c.quoteTTL = ttl
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a collector against api.binance.com.
func NewClient(log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:  defaultBaseURL,
		http:     xhttp.NewClient(xhttp.WithTimeout(15 * time.Second)),
		quoteTTL: defaultQuoteTTL,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ticker24h mirrors the /api/v3/ticker/24hr payload. Numeric fields arrive
// as strings.
type ticker24h struct {
	Symbol             string `json:"symbol"`
	PriceChangePercent string `json:"priceChangePercent"`
	LastPrice          string `json:"lastPrice"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	BidPrice           string `json:"bidPrice"`
	AskPrice           string `json:"askPrice"`
	CloseTime          int64  `json:"closeTime"`
}

// FetchQuote returns the normalized 24h quote for one symbol ("BTC/USDT").
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if q := c.cached(ctx, symbol); q != nil {
		return q, nil
	}

	var t ticker24h
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{
			"symbol": {Pair(symbol)},
		},
	}, &t)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	q := normalize(symbol, &t)
	c.remember(ctx, q)
	return q, nil
}

// FetchBatch returns quotes for the given symbols. It tries one combined
// request first and degrades to per-symbol fetches, so a single bad symbol
// only costs its own entry. The error, when non-nil, describes the symbols
// that were dropped.
func (c *Client) FetchBatch(ctx context.Context, symbols []string) ([]*models.Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	if quotes, err := c.fetchCombined(ctx, symbols); err == nil {
		return quotes, nil
	} else {
		c.log.Debug("combined ticker fetch failed, falling back to per-symbol", logger.Error(err))
	}

	quotes := make([]*models.Quote, 0, len(symbols))
	var failed []string
	for _, s := range symbols {
		q, err := c.FetchQuote(ctx, s)
		if err != nil {
			if ctx.Err() != nil {
				return quotes, ctx.Err()
			}
			failed = append(failed, s)
			continue
		}
		quotes = append(quotes, q)
	}
	if len(failed) > 0 {
		return quotes, fmt.Errorf("fetch batch: %d/%d symbols failed (%s)",
			len(failed), len(symbols), strings.Join(failed, ", "))
	}
	return quotes, nil
}

func (c *Client) fetchCombined(ctx context.Context, symbols []string) ([]*models.Quote, error) {
	pairs := make([]string, 0, len(symbols))
	bySymbol := make(map[string]string, len(symbols))
	for _, s := range symbols {
		p := Pair(s)
		pairs = append(pairs, strconv.Quote(p))
		bySymbol[p] = s
	}

	var tickers []ticker24h
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/ticker/24hr",
		QueryParams: map[string][]string{
			"symbols": {"[" + strings.Join(pairs, ",") + "]"},
		},
	}, &tickers)
	if err != nil {
		return nil, err
	}

	quotes := make([]*models.Quote, 0, len(tickers))
	for i := range tickers {
		symbol, ok := bySymbol[tickers[i].Symbol]
		if !ok {
			continue
		}
		q := normalize(symbol, &tickers[i])
		c.remember(ctx, q)
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// FetchOHLCV returns candlesticks, oldest first. timeframe uses Binance
// interval names ("1h", "4h", "1d").
func (c *Client) FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (*models.OHLCV, error) {
	if timeframe == "" {
		timeframe = "1h"
	}
	if limit <= 0 {
		limit = 100
	}

	// klines arrive as positional arrays of mixed types
	var rows [][]json.RawMessage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {Pair(symbol)},
			"interval": {timeframe},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch ohlcv %s: %w", symbol, err)
	}

	out := &models.OHLCV{
		Symbol:    symbol,
		Timeframe: timeframe,
	}
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		var openTime int64
		if err := json.Unmarshal(row[0], &openTime); err != nil {
			continue
		}
		out.Timestamps = append(out.Timestamps, openTime/1000)
		out.Opens = append(out.Opens, rawFloat(row[1]))
		out.Highs = append(out.Highs, rawFloat(row[2]))
		out.Lows = append(out.Lows, rawFloat(row[3]))
		out.Closes = append(out.Closes, rawFloat(row[4]))
		out.Volumes = append(out.Volumes, rawFloat(row[5]))
	}
	return out, nil
}

// Trending returns the USDT pairs with the highest 24h quote volume.
func (c *Client) Trending(ctx context.Context, limit int) ([]*models.Quote, error) {
	if limit <= 0 {
		limit = 10
	}

	var tickers []ticker24h
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/api/v3/ticker/24hr",
	}, &tickers)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	candidates := make([]*models.Quote, 0, limit*4)
	for i := range tickers {
		pair := tickers[i].Symbol
		if !strings.HasSuffix(pair, "USDT") {
			continue
		}
		// leveraged tokens pollute the volume ranking
		base := strings.TrimSuffix(pair, "USDT")
		if strings.HasSuffix(base, "UP") || strings.HasSuffix(base, "DOWN") ||
			strings.HasSuffix(base, "BULL") || strings.HasSuffix(base, "BEAR") {
			continue
		}
		q := normalize(base+"/USDT", &tickers[i])
		if q.Price <= 0 {
			continue
		}
		candidates = append(candidates, q)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].VolumeQuote24h > candidates[j].VolumeQuote24h
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (c *Client) cached(ctx context.Context, symbol string) *models.Quote {
	if c.cache == nil {
		return nil
	}
	var raw string
	if err := c.cache.Get(ctx, quoteKey(symbol), &raw); err != nil {
		return nil
	}
	var q models.Quote
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil
	}
	return &q
}

func (c *Client) remember(ctx context.Context, q *models.Quote) {
	if c.cache == nil || q == nil {
		return
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, quoteKey(q.Symbol), string(raw), c.quoteTTL); err != nil {
		c.log.Debug("quote cache set failed", logger.String("symbol", q.Symbol), logger.Error(err))
	}
}

func quoteKey(symbol string) string {
	return "quote:" + symbol
}

// Pair converts "BTC/USDT" into the exchange pair "BTCUSDT".
func Pair(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}

// normalize converts a raw ticker into the canonical quote. The change
// percentage is recomputed from open and last when the exchange omits it.
func normalize(symbol string, t *ticker24h) *models.Quote {
	base, quote := models.SplitSymbol(symbol)
	q := &models.Quote{
		Symbol:         symbol,
		BaseSymbol:     base,
		QuoteSymbol:    quote,
		Price:          parseFloat(t.LastPrice),
		ChangePercent:  parseFloat(t.PriceChangePercent),
		High24h:        parseFloat(t.HighPrice),
		Low24h:         parseFloat(t.LowPrice),
		Volume24h:      parseFloat(t.Volume),
		VolumeQuote24h: parseFloat(t.QuoteVolume),
		Bid:            parseFloat(t.BidPrice),
		Ask:            parseFloat(t.AskPrice),
		Timestamp:      t.CloseTime / 1000,
	}
	if q.ChangePercent == 0 && t.PriceChangePercent == "" {
		if open := parseFloat(t.OpenPrice); open != 0 {
			q.ChangePercent = (q.Price - open) / open * 100
		}
	}
	if q.Timestamp == 0 {
		q.Timestamp = time.Now().Unix()
	}
	return q
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// rawFloat parses a kline cell, which is a JSON string holding a number.
func rawFloat(raw json.RawMessage) float64 {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var f float64
		if json.Unmarshal(raw, &f) == nil {
			return f
		}
		return 0
	}
	return parseFloat(s)
}
