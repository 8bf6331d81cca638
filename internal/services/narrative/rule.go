package narrative

import (
	"context"
	"fmt"

	"CoinPulse/internal/domain/models"
)

// RuleNarrator produces a deterministic analysis paragraph from fixed
// templates. It is the default narrator and the fallback path when the
// model-backed narrator is unavailable.
type RuleNarrator struct{}

// NewRuleNarrator creates the template narrator.
func NewRuleNarrator() *RuleNarrator { return &RuleNarrator{} }

// Explain renders the template for the quote's classification. Always
// returns non-empty text.
func (n *RuleNarrator) Explain(_ context.Context, q *models.Quote, kind models.SignalKind, market *models.MarketSummary) string {
	base := q.BaseSymbol
	if base == "" {
		base = q.Symbol
	}

	var body string
	switch kind {
	case models.KindExtremeRise:
		body = fmt.Sprintf(
			"%s surged %+.2f%% in 24h to %s. A move of this size usually means the market is overheated; chasing the rally here carries serious pullback risk.",
			base, q.ChangePercent, formatPrice(q.Price))
	case models.KindExtremeDrop:
		body = fmt.Sprintf(
			"%s crashed %.2f%% in 24h to %s. Panic selling may continue; trying to catch the bottom in a drop of this magnitude is catching a falling knife.",
			base, q.ChangePercent, formatPrice(q.Price))
	case models.KindBigRise:
		body = fmt.Sprintf(
			"%s is up %+.2f%% over 24h, trading at %s. Momentum is clearly bullish, but a move this fast often retraces before continuing.",
			base, q.ChangePercent, formatPrice(q.Price))
	case models.KindBigDrop:
		body = fmt.Sprintf(
			"%s is down %.2f%% over 24h, trading at %s. Sellers are in control; wait for the decline to stabilize before considering an entry.",
			base, q.ChangePercent, formatPrice(q.Price))
	case models.KindVolumeSpike:
		body = fmt.Sprintf(
			"%s is seeing unusually heavy volume at %s with price %+.2f%% on the day. Large players may be repositioning; volume often precedes the move.",
			base, formatPrice(q.Price), q.ChangePercent)
	default:
		body = fmt.Sprintf(
			"%s is trading calmly at %s, %+.2f%% over 24h. No actionable setup right now.",
			base, formatPrice(q.Price), q.ChangePercent)
	}

	if vol := q.Volatility(); vol > 8 {
		body += fmt.Sprintf(" The 24h range is wide (%.1f%% volatility), so expect sharp swings in both directions.", vol)
	}

	if market != nil && market.OK() && market.Sentiment != "" && market.Sentiment != "neutral" {
		body += fmt.Sprintf(" The broader market is %s (average change %+.2f%%).", market.Sentiment, market.Stats.AvgChange)
	}

	return body
}

// formatPrice keeps sub-dollar assets readable and large caps compact.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("$%.0f", p)
	case p >= 1:
		return fmt.Sprintf("$%.2f", p)
	default:
		return fmt.Sprintf("$%.6f", p)
	}
}
