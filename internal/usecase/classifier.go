package usecase

import "CoinPulse/internal/domain/models"

// Thresholds hold the classification breakpoints. The defaults reproduce the
// production rule set; they are configuration, not constants.
type Thresholds struct {
	BigMovePct       float64 // |change| at or beyond which a move is "big"
	ExtremeMovePct   float64 // |change| at or beyond which a move is "extreme"
	VolumeSpikeRatio float64 // quote volume > price * ratio flags a spike
}

// DefaultThresholds returns the standard breakpoints: 5% big, 10% extreme,
// 1e8 volume ratio.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BigMovePct:       5.0,
		ExtremeMovePct:   10.0,
		VolumeSpikeRatio: 1e8,
	}
}

// Classifier maps a quote to its event kind.
type Classifier struct {
	th Thresholds
}

// NewClassifier creates a classifier with the given thresholds. Zero-value
// thresholds are replaced by the defaults.
func NewClassifier(th Thresholds) *Classifier {
	def := DefaultThresholds()
	if th.BigMovePct <= 0 {
		th.BigMovePct = def.BigMovePct
	}
	if th.ExtremeMovePct <= 0 {
		th.ExtremeMovePct = def.ExtremeMovePct
	}
	if th.VolumeSpikeRatio <= 0 {
		th.VolumeSpikeRatio = def.VolumeSpikeRatio
	}
	return &Classifier{th: th}
}

// Classify evaluates the rules in strict precedence order; extreme conditions
// subsume big-move conditions, so first match wins. Exactly +10.0 is extreme,
// not big.
func (c *Classifier) Classify(q *models.Quote) models.SignalKind {
	switch {
	case q.ChangePercent >= c.th.ExtremeMovePct:
		return models.KindExtremeRise
	case q.ChangePercent <= -c.th.ExtremeMovePct:
		return models.KindExtremeDrop
	case q.ChangePercent >= c.th.BigMovePct:
		return models.KindBigRise
	case q.ChangePercent <= -c.th.BigMovePct:
		return models.KindBigDrop
	case q.VolumeQuote24h > q.Price*c.th.VolumeSpikeRatio:
		return models.KindVolumeSpike
	default:
		return models.KindNeutral
	}
}

// IsActive reports whether the quote is worth generating a signal for.
func (c *Classifier) IsActive(q *models.Quote) bool {
	return c.Classify(q) != models.KindNeutral
}
