package usecase

import (
	"context"
	"testing"

	"CoinPulse/internal/domain/models"
)

type stubNarrator struct {
	text  string
	calls int
}

func (s *stubNarrator) Explain(_ context.Context, _ *models.Quote, _ models.SignalKind, _ *models.MarketSummary) string {
	s.calls++
	return s.text
}

func newTestGenerator(n *stubNarrator) *SignalGenerator {
	return NewSignalGenerator(NewClassifier(Thresholds{}), NewRiskAssessor(RiskConfig{}), n)
}

func TestGenerateFillsAllFields(t *testing.T) {
	n := &stubNarrator{text: "momentum is strong"}
	g := newTestGenerator(n)

	q := &models.Quote{
		Symbol:        "SOL/USDT",
		BaseSymbol:    "SOL",
		Price:         150,
		ChangePercent: 7,
		High24h:       155,
		Low24h:        140,
		Timestamp:     1700000000,
	}

	s := g.Generate(context.Background(), q, nil)
	if s.Symbol != "SOL/USDT" || s.BaseSymbol != "SOL" {
		t.Fatalf("symbol fields not carried over: %+v", s)
	}
	if s.Kind != models.KindBigRise {
		t.Fatalf("kind = %v, want big rise", s.Kind)
	}
	if s.EntryPrice != 150 || s.CurrentPrice != 150 {
		t.Fatalf("prices = %v/%v, want 150/150", s.EntryPrice, s.CurrentPrice)
	}
	if s.Analysis != "momentum is strong" {
		t.Fatalf("analysis = %q", s.Analysis)
	}
	if n.calls != 1 {
		t.Fatalf("narrator called %d times, want 1", n.calls)
	}
	if s.Disclaimer != models.Disclaimer {
		t.Fatalf("disclaimer missing")
	}
	if s.Timestamp != 1700000000 {
		t.Fatalf("timestamp = %d, want quote timestamp", s.Timestamp)
	}
	if s.TimestampISO == "" {
		t.Fatalf("serialized timestamp not stamped")
	}
	if s.Recommendation == "" {
		t.Fatalf("recommendation missing")
	}
}

func TestGenerateKeyLevels(t *testing.T) {
	g := newTestGenerator(&stubNarrator{text: "x"})

	// 10% volatility: first band at 5%, second at 10%
	q := &models.Quote{
		Symbol:        "BTC/USDT",
		Price:         100,
		ChangePercent: 6,
		High24h:       110,
		Low24h:        100,
	}
	s := g.Generate(context.Background(), q, nil)

	kl := s.KeyLevels
	if kl.Pivot != 100 {
		t.Fatalf("pivot = %v, want 100", kl.Pivot)
	}
	if !almostEqual(kl.Resistance1, 105) || !almostEqual(kl.Support1, 95) {
		t.Fatalf("band 1 = %v/%v, want 105/95", kl.Resistance1, kl.Support1)
	}
	if !almostEqual(kl.Resistance2, 110) || !almostEqual(kl.Support2, 90) {
		t.Fatalf("band 2 = %v/%v, want 110/90", kl.Resistance2, kl.Support2)
	}
}

func TestGenerateDeterministicExceptTimestamp(t *testing.T) {
	g := newTestGenerator(&stubNarrator{text: "same story"})

	q := quoteWithChange(-11)
	q.Timestamp = 1700000000

	a := g.Generate(context.Background(), q, nil)
	b := g.Generate(context.Background(), q, nil)

	if a.Kind != b.Kind || a.Risk != b.Risk || a.Confidence != b.Confidence ||
		a.Recommendation != b.Recommendation || a.Analysis != b.Analysis {
		t.Fatalf("generation is not deterministic: %+v vs %+v", a, b)
	}
}

func TestGenerateDefaultsTimestamp(t *testing.T) {
	g := newTestGenerator(&stubNarrator{text: "x"})

	q := quoteWithChange(6)
	q.Timestamp = 0
	s := g.Generate(context.Background(), q, nil)
	if s.Timestamp == 0 {
		t.Fatalf("zero quote timestamp must default to now")
	}
}
