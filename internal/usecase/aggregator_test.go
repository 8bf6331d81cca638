package usecase

import (
	"math"
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestSummarizeEmptyBatch(t *testing.T) {
	a := NewMarketAggregator(NewClassifier(Thresholds{}), DefaultSentimentBands(), "BTC/USDT")

	s := a.Summarize(nil)
	if s.OK() {
		t.Fatalf("empty batch must yield error status, got %q", s.Status)
	}
	if s.Message == "" {
		t.Fatalf("error summary must carry a message")
	}
	if s.Timestamp == 0 {
		t.Fatalf("error summary must be timestamped")
	}
}

func TestSummarizeStats(t *testing.T) {
	a := NewMarketAggregator(NewClassifier(Thresholds{}), DefaultSentimentBands(), "BTC/USDT")

	changes := []float64{3, -1, 2, -4, 0, 1}
	quotes := make([]*models.Quote, 0, len(changes))
	for i, ch := range changes {
		q := quoteWithChange(ch)
		q.Symbol = []string{"BTC/USDT", "ETH/USDT", "BNB/USDT", "SOL/USDT", "XRP/USDT", "ADA/USDT"}[i]
		quotes = append(quotes, q)
	}

	s := a.Summarize(quotes)
	if !s.OK() {
		t.Fatalf("status = %q, want ok", s.Status)
	}
	if want := (3.0 - 1 + 2 - 4 + 0 + 1) / 6; math.Abs(s.Stats.AvgChange-want) > 1e-9 {
		t.Fatalf("avg change = %v, want %v", s.Stats.AvgChange, want)
	}
	// flat counts as gaining
	if s.Stats.Gainers != 4 {
		t.Fatalf("gainers = %d, want 4", s.Stats.Gainers)
	}
	if s.Stats.Losers != 2 {
		t.Fatalf("losers = %d, want 2", s.Stats.Losers)
	}
	if s.Stats.Extremes != 0 {
		t.Fatalf("extremes = %d, want 0", s.Stats.Extremes)
	}
	if s.Sentiment != "neutral" {
		t.Fatalf("sentiment = %q, want neutral", s.Sentiment)
	}
	if len(s.Coins) != 6 {
		t.Fatalf("coins = %d, want 6", len(s.Coins))
	}
}

func TestSummarizeBellwether(t *testing.T) {
	a := NewMarketAggregator(NewClassifier(Thresholds{}), DefaultSentimentBands(), "BTC/USDT")

	btc := quoteWithChange(2.5)
	btc.Price = 64000
	eth := quoteWithChange(-1)
	eth.Symbol = "ETH/USDT"

	s := a.Summarize([]*models.Quote{eth, btc})
	if s.BellwetherPrice != 64000 {
		t.Fatalf("bellwether price = %v, want 64000", s.BellwetherPrice)
	}
	if s.BellwetherChange != 2.5 {
		t.Fatalf("bellwether change = %v, want 2.5", s.BellwetherChange)
	}
	if s.Bellwether != "BTC/USDT" {
		t.Fatalf("bellwether symbol = %q", s.Bellwether)
	}
}

func TestSentimentBands(t *testing.T) {
	a := NewMarketAggregator(NewClassifier(Thresholds{}), DefaultSentimentBands(), "BTC/USDT")

	cases := []struct {
		avg  float64
		want string
	}{
		{6, "extremely bullish"},
		{5, "extremely bullish"},
		{3, "bullish"},
		{2, "bullish"},
		{0, "neutral"},
		{-2, "neutral"},
		{-2.1, "bearish"},
		{-5, "bearish"},
		{-5.1, "extremely bearish"},
	}
	for _, tc := range cases {
		if got := a.sentiment(tc.avg); got != tc.want {
			t.Fatalf("avg=%v sentiment = %q, want %q", tc.avg, got, tc.want)
		}
	}
}

func TestSummarizeCountsExtremes(t *testing.T) {
	a := NewMarketAggregator(NewClassifier(Thresholds{}), DefaultSentimentBands(), "BTC/USDT")

	s := a.Summarize([]*models.Quote{quoteWithChange(11), quoteWithChange(-12), quoteWithChange(1)})
	if s.Stats.Extremes != 2 {
		t.Fatalf("extremes = %d, want 2", s.Stats.Extremes)
	}
}
