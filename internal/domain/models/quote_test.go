package models

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestVolatility(t *testing.T) {
	q := &Quote{High24h: 110, Low24h: 100}
	if got := q.Volatility(); math.Abs(got-10) > 1e-9 {
		t.Fatalf("volatility = %v, want 10", got)
	}

	zero := &Quote{High24h: 110, Low24h: 0}
	if got := zero.Volatility(); got != 0 {
		t.Fatalf("volatility = %v, want 0 with zero low", got)
	}
}

func TestSpread(t *testing.T) {
	q := &Quote{Bid: 99, Ask: 100}
	if got := q.Spread(); math.Abs(got-1) > 1e-9 {
		t.Fatalf("spread = %v, want 1", got)
	}

	if got := (&Quote{Bid: 0, Ask: 100}).Spread(); got != 0 {
		t.Fatalf("spread = %v, want 0 with missing bid", got)
	}
	if got := (&Quote{Bid: 99, Ask: 0}).Spread(); got != 0 {
		t.Fatalf("spread = %v, want 0 with missing ask", got)
	}
}

func TestSplitSymbol(t *testing.T) {
	base, quote := SplitSymbol("BTC/USDT")
	if base != "BTC" || quote != "USDT" {
		t.Fatalf("split = %s/%s", base, quote)
	}
	base, quote = SplitSymbol("SOL")
	if base != "SOL" || quote != "USDT" {
		t.Fatalf("unpaired split = %s/%s", base, quote)
	}
}

func TestCanonicalSymbol(t *testing.T) {
	cases := map[string]string{
		"btc":      "BTC/USDT",
		"BTCUSDT":  "BTC/USDT",
		"eth/usdt": "ETH/USDT",
		"SOL":      "SOL/USDT",
		"ETHBTC":   "ETH/BTC",
	}
	for in, want := range cases {
		if got := CanonicalSymbol(in); got != want {
			t.Fatalf("CanonicalSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSignalJSONShape(t *testing.T) {
	sl := 95.0
	tp := 110.0
	s := &Signal{
		Symbol:     "BTC/USDT",
		Kind:       KindExtremeRise,
		Position:   PositionLong,
		Risk:       RiskExtreme,
		StopLoss:   &sl,
		TakeProfit: &tp,
		Timestamp:  1700000000,
		Disclaimer: Disclaimer,
	}
	s.Stamp()

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)

	for _, want := range []string{
		`"signal_type":"extreme_rise"`,
		`"position":"long"`,
		`"risk_level":"extreme"`,
		`"stop_loss":95`,
		`"timestamp":"2023-11-14T22:13:20Z"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("json missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"timestamp":1700000000`) {
		t.Fatalf("epoch timestamp must not be serialized:\n%s", out)
	}
}

func TestSignalJSONNullLevels(t *testing.T) {
	s := &Signal{Symbol: "BTC/USDT", Timestamp: 1700000000}
	s.Stamp()
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"stop_loss":null`) {
		t.Fatalf("hold signal must serialize null stop_loss:\n%s", b)
	}
}

func TestRiskEscalate(t *testing.T) {
	if RiskMedium.Escalate() != RiskHigh {
		t.Fatalf("medium should escalate to high")
	}
	if RiskExtreme.Escalate() != RiskExtreme {
		t.Fatalf("extreme is the cap")
	}
}
