package usecase

import (
	"testing"

	"CoinPulse/internal/domain/models"
)

func TestAssessBigDrop(t *testing.T) {
	// 24h range gives 10.5% volatility, above the Medium escalation bar
	q := &models.Quote{
		Symbol:        "ETH/USDT",
		Price:         100,
		ChangePercent: -6,
		High24h:       105,
		Low24h:        95,
	}
	a := NewRiskAssessor(RiskConfig{})
	c := NewClassifier(Thresholds{})

	kind := c.Classify(q)
	if kind != models.KindBigDrop {
		t.Fatalf("kind = %v, want big drop", kind)
	}

	out := a.Assess(q, kind)
	if out.Position != models.PositionHold {
		t.Fatalf("position = %v, want hold", out.Position)
	}
	if out.Risk < models.RiskHigh {
		t.Fatalf("risk = %v, want at least high", out.Risk)
	}
	if out.StopLoss != nil || out.TakeProfit != nil {
		t.Fatalf("hold position must not carry stop/take levels")
	}
}

func TestAssessExtremeRise(t *testing.T) {
	q := &models.Quote{
		Symbol:        "BTC/USDT",
		Price:         50000,
		ChangePercent: 12,
		High24h:       52000,
		Low24h:        44000,
	}
	a := NewRiskAssessor(RiskConfig{})
	c := NewClassifier(Thresholds{})

	kind := c.Classify(q)
	if kind != models.KindExtremeRise {
		t.Fatalf("kind = %v, want extreme rise", kind)
	}

	out := a.Assess(q, kind)
	if out.Risk != models.RiskExtreme {
		t.Fatalf("risk = %v, want extreme", out.Risk)
	}
	if out.Leverage != 1 {
		t.Fatalf("leverage = %d, want 1 for extreme risk", out.Leverage)
	}
	if out.Recommendation == "" {
		t.Fatalf("recommendation must not be empty")
	}
}

func TestAssessVolumeSpikePositions(t *testing.T) {
	a := NewRiskAssessor(RiskConfig{})

	up := &models.Quote{Price: 100, ChangePercent: 2, High24h: 101, Low24h: 99}
	out := a.Assess(up, models.KindVolumeSpike)
	if out.Position != models.PositionLong {
		t.Fatalf("position = %v, want long on positive change", out.Position)
	}
	if out.StopLoss == nil || out.TakeProfit == nil {
		t.Fatalf("long position must carry stop/take levels")
	}
	if *out.StopLoss >= up.Price {
		t.Fatalf("long stop-loss %v must be below price", *out.StopLoss)
	}
	if *out.TakeProfit <= up.Price {
		t.Fatalf("long take-profit %v must be above price", *out.TakeProfit)
	}

	down := &models.Quote{Price: 100, ChangePercent: -2, High24h: 101, Low24h: 99}
	out = a.Assess(down, models.KindVolumeSpike)
	if out.Position != models.PositionShort {
		t.Fatalf("position = %v, want short on negative change", out.Position)
	}
	if *out.StopLoss <= down.Price {
		t.Fatalf("short stop-loss %v must be above price", *out.StopLoss)
	}
	if *out.TakeProfit >= down.Price {
		t.Fatalf("short take-profit %v must be below price", *out.TakeProfit)
	}
}

func TestStopTakeDistance(t *testing.T) {
	a := NewRiskAssessor(RiskConfig{})

	// medium risk: 3% stop, 6% take
	q := &models.Quote{Price: 200, ChangePercent: 1, High24h: 202, Low24h: 198}
	out := a.Assess(q, models.KindVolumeSpike)
	if out.Risk != models.RiskMedium {
		t.Fatalf("risk = %v, want medium", out.Risk)
	}
	if got, want := *out.StopLoss, 200*0.97; !almostEqual(got, want) {
		t.Fatalf("stop-loss = %v, want %v", got, want)
	}
	if got, want := *out.TakeProfit, 200*1.06; !almostEqual(got, want) {
		t.Fatalf("take-profit = %v, want %v", got, want)
	}
}

func TestConfidenceBounds(t *testing.T) {
	a := NewRiskAssessor(RiskConfig{})

	cases := []struct {
		kind models.SignalKind
		q    *models.Quote
	}{
		{models.KindExtremeRise, &models.Quote{Price: 100, Bid: 99.99, Ask: 100, High24h: 101, Low24h: 99}},
		{models.KindNeutral, &models.Quote{Price: 100, Bid: 95, Ask: 100, High24h: 101, Low24h: 99}},
		{models.KindBigDrop, &models.Quote{Price: 100, High24h: 120, Low24h: 80}},
	}
	for _, tc := range cases {
		out := a.Assess(tc.q, tc.kind)
		if out.Confidence < 0.30 || out.Confidence > 0.95 {
			t.Fatalf("kind %v: confidence %v outside [0.30, 0.95]", tc.kind, out.Confidence)
		}
	}
}

func TestConfidenceSpreadAdjustment(t *testing.T) {
	a := NewRiskAssessor(RiskConfig{})

	tight := &models.Quote{Price: 100, Bid: 99.95, Ask: 100, High24h: 101, Low24h: 99}
	wide := &models.Quote{Price: 100, Bid: 99, Ask: 100, High24h: 101, Low24h: 99}

	ct := a.Assess(tight, models.KindBigRise).Confidence
	cw := a.Assess(wide, models.KindBigRise).Confidence
	if ct <= cw {
		t.Fatalf("tight spread confidence %v must exceed wide spread %v", ct, cw)
	}
}

func TestConfidenceWithoutBookData(t *testing.T) {
	a := NewRiskAssessor(RiskConfig{})

	// no bid/ask: spread reads 0, which still earns the tight-spread bonus
	q := &models.Quote{Price: 100, ChangePercent: 12, High24h: 101, Low24h: 99}
	if got := a.Assess(q, models.KindExtremeRise).Confidence; !almostEqual(got, 0.8) {
		t.Fatalf("confidence = %v, want 0.8 (0.5 base + 0.2 extreme + 0.1 tight)", got)
	}
}

func TestVolatilityEscalation(t *testing.T) {
	a := NewRiskAssessor(RiskConfig{})

	// 25% range escalates extreme base one level (stays extreme, capped)
	q := &models.Quote{Price: 100, ChangePercent: 11, High24h: 110, Low24h: 88}
	if got := a.Assess(q, models.KindExtremeRise).Risk; got != models.RiskExtreme {
		t.Fatalf("risk = %v, want extreme", got)
	}

	// ~6% range bumps a medium base to high
	calm := &models.Quote{Price: 100, ChangePercent: 1, High24h: 103, Low24h: 97}
	if got := a.Assess(calm, models.KindVolumeSpike).Risk; got != models.RiskHigh {
		t.Fatalf("risk = %v, want high after medium escalation", got)
	}

	// tight range leaves medium alone
	flat := &models.Quote{Price: 100, ChangePercent: 1, High24h: 101, Low24h: 99}
	if got := a.Assess(flat, models.KindVolumeSpike).Risk; got != models.RiskMedium {
		t.Fatalf("risk = %v, want medium", got)
	}
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
