package usecase

import (
	"time"

	"CoinPulse/internal/domain/models"
)

// SentimentBands are the mean-change breakpoints for the five sentiment
// labels. Crypto banding: +-2 / +-5.
type SentimentBands struct {
	ExtremePct float64 // |avg| at or beyond which sentiment is extreme
	LeanPct    float64 // |avg| at or beyond which sentiment leans bull/bear
}

// DefaultSentimentBands returns the standard crypto breakpoints.
func DefaultSentimentBands() SentimentBands {
	return SentimentBands{ExtremePct: 5.0, LeanPct: 2.0}
}

// MarketAggregator computes a MarketSummary over a batch of quotes.
type MarketAggregator struct {
	classifier *Classifier
	bands      SentimentBands
	bellwether string
}

// NewMarketAggregator creates an aggregator. bellwether names the reference
// instrument whose price/change color the summary (e.g. "BTC/USDT").
func NewMarketAggregator(classifier *Classifier, bands SentimentBands, bellwether string) *MarketAggregator {
	if bands.ExtremePct <= 0 || bands.LeanPct <= 0 {
		bands = DefaultSentimentBands()
	}
	if bellwether == "" {
		bellwether = "BTC/USDT"
	}
	return &MarketAggregator{classifier: classifier, bands: bands, bellwether: bellwether}
}

// Bellwether returns the configured reference symbol.
func (a *MarketAggregator) Bellwether() string { return a.bellwether }

// Summarize builds the snapshot. An empty batch yields a summary with
// Status "error" and no computed statistics; that is a result, not a failure.
func (a *MarketAggregator) Summarize(quotes []*models.Quote) *models.MarketSummary {
	if len(quotes) == 0 {
		return &models.MarketSummary{
			Status:    "error",
			Message:   "insufficient data: empty quote batch",
			Timestamp: time.Now().Unix(),
		}
	}

	var (
		sum      float64
		losers   int
		extremes int
		coins    = make([]models.CoinChange, 0, len(quotes))
	)
	summary := &models.MarketSummary{
		Status:     "ok",
		Bellwether: a.bellwether,
		Timestamp:  time.Now().Unix(),
	}

	for _, q := range quotes {
		sum += q.ChangePercent
		// flat counts as gaining, only strictly negative is a loser
		if q.ChangePercent < 0 {
			losers++
		}
		if a.classifier.Classify(q).IsExtreme() {
			extremes++
		}
		if q.Symbol == a.bellwether {
			summary.BellwetherPrice = q.Price
			summary.BellwetherChange = q.ChangePercent
		}
		coins = append(coins, models.CoinChange{
			Symbol:     q.Symbol,
			Price:      q.Price,
			Change:     q.ChangePercent,
			Volatility: q.Volatility(),
		})
	}

	avg := sum / float64(len(quotes))
	summary.Sentiment = a.sentiment(avg)
	summary.Coins = coins
	summary.Stats = models.MarketStats{
		AvgChange: avg,
		Gainers:   len(quotes) - losers,
		Losers:    losers,
		Extremes:  extremes,
	}
	return summary
}

// sentiment is a step function of the mean change percentage, five bands.
func (a *MarketAggregator) sentiment(avg float64) string {
	switch {
	case avg >= a.bands.ExtremePct:
		return "extremely bullish"
	case avg >= a.bands.LeanPct:
		return "bullish"
	case avg >= -a.bands.LeanPct:
		return "neutral"
	case avg >= -a.bands.ExtremePct:
		return "bearish"
	default:
		return "extremely bearish"
	}
}
