package usecase

import (
	"context"
	"time"

	"CoinPulse/internal/domain/models"
	domsvc "CoinPulse/internal/domain/service"
)

// SignalGenerator assembles a Signal from a quote: classify, assess risk,
// narrate, compute key levels. Deterministic given its inputs and the
// narrator's output.
type SignalGenerator struct {
	classifier *Classifier
	risk       *RiskAssessor
	narrator   domsvc.Narrator
}

// NewSignalGenerator creates a generator from its three collaborators.
func NewSignalGenerator(classifier *Classifier, risk *RiskAssessor, narrator domsvc.Narrator) *SignalGenerator {
	return &SignalGenerator{classifier: classifier, risk: risk, narrator: narrator}
}

// Classifier exposes the underlying classifier for active-quote filtering.
func (g *SignalGenerator) Classifier() *Classifier { return g.classifier }

// Generate builds the immutable signal record for one quote.
func (g *SignalGenerator) Generate(ctx context.Context, q *models.Quote, market *models.MarketSummary) *models.Signal {
	kind := g.classifier.Classify(q)
	outcome := g.risk.Assess(q, kind)
	analysis := g.narrator.Explain(ctx, q, kind, market)

	s := &models.Signal{
		Symbol:         q.Symbol,
		BaseSymbol:     q.BaseSymbol,
		Kind:           kind,
		Position:       outcome.Position,
		EntryPrice:     q.Price,
		CurrentPrice:   q.Price,
		ChangePercent:  q.ChangePercent,
		Volatility:     q.Volatility(),
		Analysis:       analysis,
		KeyLevels:      keyLevels(q),
		Risk:           outcome.Risk,
		Recommendation: outcome.Recommendation,
		StopLoss:       outcome.StopLoss,
		TakeProfit:     outcome.TakeProfit,
		Leverage:       outcome.Leverage,
		Confidence:     outcome.Confidence,
		Timestamp:      q.Timestamp,
		Disclaimer:     models.Disclaimer,
	}
	if s.Timestamp == 0 {
		s.Timestamp = time.Now().Unix()
	}
	s.Stamp()
	return s
}

// keyLevels derives pivot bands from the 24h volatility: the first band at
// half the range, the second at the full range.
func keyLevels(q *models.Quote) models.KeyLevels {
	vol := q.Volatility() / 100
	return models.KeyLevels{
		Pivot:       q.Price,
		Resistance1: q.Price * (1 + vol*0.5),
		Support1:    q.Price * (1 - vol*0.5),
		Resistance2: q.Price * (1 + vol),
		Support2:    q.Price * (1 - vol),
	}
}
