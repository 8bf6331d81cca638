package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/cache"
	"CoinPulse/pkg/logger"
)

const defaultStreamURL = "wss://stream.binance.com:9443/stream"

// Stream consumes the Binance miniTicker websocket feed for the watchlist
// and refreshes the shared quote cache, so polling reads serve data that is
// seconds old at most. The stream is an optimization: the REST collector
// works without it.
type Stream struct {
	url       string
	symbols   []string
	cache     cache.Service
	quoteTTL  time.Duration
	log       *logger.Logger
	connected atomic.Bool
}

// StreamOption configures Stream.
type StreamOption func(*Stream)

// WithStreamURL overrides the websocket endpoint.
func WithStreamURL(url string) StreamOption {
	return func(s *Stream) { s.url = url }
}

// NewStream creates a stream for the given symbols ("BTC/USDT" form).
func NewStream(symbols []string, svc cache.Service, ttl time.Duration, log *logger.Logger, opts ...StreamOption) *Stream {
	if ttl <= 0 {
		ttl = defaultQuoteTTL
	}
	s := &Stream{
		url:      defaultStreamURL,
		symbols:  symbols,
		cache:    svc,
		quoteTTL: ttl,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connected reports whether the feed is currently up.
func (s *Stream) Connected() bool { return s.connected.Load() }

// Run connects and consumes the feed until ctx is cancelled, reconnecting
// with linear backoff on failures.
func (s *Stream) Run(ctx context.Context) {
	if len(s.symbols) == 0 || s.cache == nil {
		s.log.Warn("ticker stream disabled, nothing to subscribe to")
		return
	}

	backoff := time.Second
	for ctx.Err() == nil {
		err := s.consume(ctx)
		s.connected.Store(false)
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("ticker stream disconnected, reconnecting",
			logger.Error(err),
			logger.Duration("backoff", backoff),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff += time.Second
		}
	}
}

// streamEnvelope wraps combined-stream messages.
type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// miniTicker is the 24hrMiniTicker event payload.
type miniTicker struct {
	Event       string `json:"e"`
	EventTime   int64  `json:"E"`
	Symbol      string `json:"s"`
	Close       string `json:"c"`
	Open        string `json:"o"`
	High        string `json:"h"`
	Low         string `json:"l"`
	Volume      string `json:"v"`
	QuoteVolume string `json:"q"`
}

func (s *Stream) consume(ctx context.Context) error {
	streams := make([]string, 0, len(s.symbols))
	bySymbol := make(map[string]string, len(s.symbols))
	for _, sym := range s.symbols {
		pair := Pair(sym)
		streams = append(streams, strings.ToLower(pair)+"@miniTicker")
		bySymbol[pair] = sym
	}

	url := s.url + "?streams=" + strings.Join(streams, "/")
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()

	// unblock ReadMessage when ctx fires
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	s.connected.Store(true)
	s.log.Info("ticker stream connected", logger.Int("streams", len(streams)))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var env streamEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		var tick miniTicker
		if err := json.Unmarshal(env.Data, &tick); err != nil || tick.Event != "24hrMiniTicker" {
			continue
		}
		symbol, ok := bySymbol[tick.Symbol]
		if !ok {
			continue
		}
		s.store(ctx, symbol, &tick)
	}
}

// store converts the mini ticker into a quote and refreshes the cache entry.
// Mini tickers carry no book data, so bid/ask are taken from the previous
// cached quote when present.
func (s *Stream) store(ctx context.Context, symbol string, tick *miniTicker) {
	base, quote := models.SplitSymbol(symbol)
	q := &models.Quote{
		Symbol:         symbol,
		BaseSymbol:     base,
		QuoteSymbol:    quote,
		Price:          parseFloat(tick.Close),
		High24h:        parseFloat(tick.High),
		Low24h:         parseFloat(tick.Low),
		Volume24h:      parseFloat(tick.Volume),
		VolumeQuote24h: parseFloat(tick.QuoteVolume),
		Timestamp:      tick.EventTime / 1000,
	}
	if open := parseFloat(tick.Open); open != 0 {
		q.ChangePercent = (q.Price - open) / open * 100
	}
	if q.Timestamp == 0 {
		q.Timestamp = time.Now().Unix()
	}

	var prevRaw string
	if err := s.cache.Get(ctx, quoteKey(symbol), &prevRaw); err == nil {
		var prev models.Quote
		if json.Unmarshal([]byte(prevRaw), &prev) == nil {
			q.Bid = prev.Bid
			q.Ask = prev.Ask
		}
	}

	raw, err := json.Marshal(q)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, quoteKey(symbol), string(raw), s.quoteTTL); err != nil {
		s.log.Debug("stream cache set failed", logger.String("symbol", symbol), logger.Error(err))
	}
}
