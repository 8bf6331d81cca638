package models

// CoinChange is one instrument's entry in the market summary list.
type CoinChange struct {
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	Change     float64 `json:"change"`
	Volatility float64 `json:"volatility"`
}

// MarketStats aggregates the batch-wide numbers of a summary.
type MarketStats struct {
	AvgChange float64 `json:"avg_change"`
	Gainers   int     `json:"gainers"`
	Losers    int     `json:"losers"`
	Extremes  int     `json:"extremes"`
}

// MarketSummary is a snapshot over a batch of quotes. Status is "ok" or
// "error"; on "error" no computed statistics are populated.
type MarketSummary struct {
	Status           string       `json:"status"`
	Message          string       `json:"message,omitempty"`
	Timestamp        int64        `json:"timestamp"`
	Sentiment        string       `json:"market_sentiment,omitempty"`
	Bellwether       string       `json:"-"` // reference symbol, e.g. "BTC/USDT"
	BellwetherPrice  float64      `json:"btc_price"`
	BellwetherChange float64      `json:"btc_change"`
	Coins            []CoinChange `json:"major_coins,omitempty"`
	Stats            MarketStats  `json:"summary"`
}

// OK reports whether the summary carries computed statistics.
func (m *MarketSummary) OK() bool { return m != nil && m.Status == "ok" }
