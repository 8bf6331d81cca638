package models

import "strings"

// Quote is one instrument's 24h market state at a point in time.
// Constructed once by the collection layer and never mutated.
type Quote struct {
	Symbol         string  `json:"symbol"`       // e.g. "BTC/USDT"
	BaseSymbol     string  `json:"base_symbol"`  // BTC
	QuoteSymbol    string  `json:"quote_symbol"` // USDT
	Price          float64 `json:"price"`
	ChangePercent  float64 `json:"change_percent"`
	High24h        float64 `json:"high_24h"`
	Low24h         float64 `json:"low_24h"`
	Volume24h      float64 `json:"volume_24h"`       // base-denominated
	VolumeQuote24h float64 `json:"volume_quote_24h"` // quote-denominated
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Timestamp      int64   `json:"timestamp"` // epoch seconds
}

// Volatility is the 24h high-low range as a percentage of the low.
func (q *Quote) Volatility() float64 {
	if q.Low24h == 0 {
		return 0
	}
	return (q.High24h - q.Low24h) / q.Low24h * 100
}

// Spread is the bid/ask gap as a percentage of the ask.
func (q *Quote) Spread() float64 {
	if q.Ask == 0 || q.Bid == 0 {
		return 0
	}
	return (q.Ask - q.Bid) / q.Ask * 100
}

// IsZero reports whether the quote carries no usable data. The normalizer
// never fails, so callers use this to discard sentinel quotes.
func (q *Quote) IsZero() bool {
	return q.Price == 0 && q.Volume24h == 0 && q.High24h == 0 && q.Low24h == 0
}

// SplitSymbol separates a pair like "BTC/USDT" into base and quote parts.
// Unpaired symbols keep the whole string as base and default to USDT.
func SplitSymbol(symbol string) (base, quote string) {
	parts := strings.SplitN(symbol, "/", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[0], parts[1]
	}
	return symbol, "USDT"
}

// CanonicalSymbol normalizes user-supplied symbols to the "BASE/QUOTE" form:
// "btc" and "BTCUSDT" both become "BTC/USDT".
func CanonicalSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.Contains(s, "/") {
		return s
	}
	for _, quote := range []string{"USDT", "USDC", "BTC", "ETH", "BNB"} {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s[:len(s)-len(quote)] + "/" + quote
		}
	}
	return s + "/USDT"
}

// OHLCV holds candle series for one symbol and timeframe, column-oriented.
type OHLCV struct {
	Symbol     string    `json:"symbol"`
	Timeframe  string    `json:"timeframe"`
	Timestamps []int64   `json:"timestamps"`
	Opens      []float64 `json:"opens"`
	Highs      []float64 `json:"highs"`
	Lows       []float64 `json:"lows"`
	Closes     []float64 `json:"closes"`
	Volumes    []float64 `json:"volumes"`
}

// Len returns the number of candles in the series.
func (o *OHLCV) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Closes)
}
