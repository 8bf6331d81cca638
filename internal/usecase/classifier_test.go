package usecase

import (
	"testing"

	"CoinPulse/internal/domain/models"
)

func quoteWithChange(change float64) *models.Quote {
	return &models.Quote{
		Symbol:        "BTC/USDT",
		BaseSymbol:    "BTC",
		Price:         50000,
		ChangePercent: change,
		High24h:       51000,
		Low24h:        49000,
	}
}

func TestClassifyPrecedence(t *testing.T) {
	c := NewClassifier(Thresholds{})

	cases := []struct {
		name   string
		change float64
		want   models.SignalKind
	}{
		{"extreme rise", 12.5, models.KindExtremeRise},
		{"extreme drop", -15, models.KindExtremeDrop},
		{"big rise", 6, models.KindBigRise},
		{"big drop", -7.3, models.KindBigDrop},
		{"calm", 1.2, models.KindNeutral},
		{"calm negative", -0.5, models.KindNeutral},
	}
	for _, tc := range cases {
		if got := c.Classify(quoteWithChange(tc.change)); got != tc.want {
			t.Fatalf("%s: change=%v got %v want %v", tc.name, tc.change, got, tc.want)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	c := NewClassifier(Thresholds{})

	// exactly +-10 is extreme, not big
	if got := c.Classify(quoteWithChange(10.0)); got != models.KindExtremeRise {
		t.Fatalf("change=+10 got %v want extreme rise", got)
	}
	if got := c.Classify(quoteWithChange(-10.0)); got != models.KindExtremeDrop {
		t.Fatalf("change=-10 got %v want extreme drop", got)
	}
	// exactly +-5 is big
	if got := c.Classify(quoteWithChange(5.0)); got != models.KindBigRise {
		t.Fatalf("change=+5 got %v want big rise", got)
	}
	if got := c.Classify(quoteWithChange(-5.0)); got != models.KindBigDrop {
		t.Fatalf("change=-5 got %v want big drop", got)
	}
	// just inside the band
	if got := c.Classify(quoteWithChange(4.99)); got != models.KindNeutral {
		t.Fatalf("change=4.99 got %v want neutral", got)
	}
}

func TestClassifyVolumeSpike(t *testing.T) {
	c := NewClassifier(Thresholds{})

	q := quoteWithChange(2)
	q.VolumeQuote24h = q.Price*1e8 + 1
	if got := c.Classify(q); got != models.KindVolumeSpike {
		t.Fatalf("got %v want volume spike", got)
	}

	// a big move takes precedence over the volume rule
	q.ChangePercent = 6
	if got := c.Classify(q); got != models.KindBigRise {
		t.Fatalf("got %v want big rise over volume spike", got)
	}

	// at the exact ratio the spike does not fire
	q.ChangePercent = 0
	q.VolumeQuote24h = q.Price * 1e8
	if got := c.Classify(q); got != models.KindNeutral {
		t.Fatalf("got %v want neutral at exact ratio", got)
	}
}

func TestIsActive(t *testing.T) {
	c := NewClassifier(Thresholds{})

	if c.IsActive(quoteWithChange(1)) {
		t.Fatalf("neutral quote must not be active")
	}
	if !c.IsActive(quoteWithChange(-8)) {
		t.Fatalf("big drop must be active")
	}
}

func TestCustomThresholds(t *testing.T) {
	c := NewClassifier(Thresholds{BigMovePct: 2, ExtremeMovePct: 4})

	if got := c.Classify(quoteWithChange(3)); got != models.KindBigRise {
		t.Fatalf("got %v want big rise with custom thresholds", got)
	}
	if got := c.Classify(quoteWithChange(4)); got != models.KindExtremeRise {
		t.Fatalf("got %v want extreme rise with custom thresholds", got)
	}
}
