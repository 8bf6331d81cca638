package usecase

import "CoinPulse/internal/domain/models"

// RiskOutcome is the assessor's verdict for one classified quote.
type RiskOutcome struct {
	Position       models.Position
	Risk           models.RiskLevel
	Recommendation string
	Confidence     float64
	StopLoss       *float64 // both set or both nil, nil when Position is Hold
	TakeProfit     *float64
	Leverage       int
}

// RiskConfig holds the assessor's tunables.
type RiskConfig struct {
	VolEscalateAny    float64 // volatility above which risk escalates one level
	VolEscalateMedium float64 // volatility above which Medium escalates to High
	TightSpreadPct    float64 // spread below this adds confidence
	WideSpreadPct     float64 // spread above this removes confidence
	MinConfidence     float64
	MaxConfidence     float64
}

// DefaultRiskConfig returns the standard assessor tunables.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		VolEscalateAny:    10.0,
		VolEscalateMedium: 5.0,
		TightSpreadPct:    0.1,
		WideSpreadPct:     0.5,
		MinConfidence:     0.30,
		MaxConfidence:     0.95,
	}
}

// stop-loss offset per risk level
var slMultiplier = map[models.RiskLevel]float64{
	models.RiskLow:     0.02,
	models.RiskMedium:  0.03,
	models.RiskHigh:    0.05,
	models.RiskExtreme: 0.08,
}

// leverage suggestion is the inverse of risk
var leverageByRisk = map[models.RiskLevel]int{
	models.RiskLow:     3,
	models.RiskMedium:  2,
	models.RiskHigh:    1,
	models.RiskExtreme: 1,
}

type riskPosition struct {
	risk models.RiskLevel
	pos  models.Position
}

var recommendations = map[riskPosition]string{
	{models.RiskExtreme, models.PositionHold}:  "Stay out. Do not chase the move or try to catch the bottom.",
	{models.RiskExtreme, models.PositionLong}:  "Extreme risk. Minimal position size only.",
	{models.RiskExtreme, models.PositionShort}: "Extreme risk. Minimal position size only.",
	{models.RiskHigh, models.PositionHold}:     "Wait for a better entry. Patience over exposure.",
	{models.RiskHigh, models.PositionLong}:     "Small position only, with a hard stop-loss.",
	{models.RiskHigh, models.PositionShort}:    "Small position only, with a hard stop-loss.",
	{models.RiskMedium, models.PositionHold}:   "A small probe position is acceptable.",
	{models.RiskMedium, models.PositionLong}:   "Entry is reasonable. Set your stop-loss first.",
	{models.RiskMedium, models.PositionShort}:  "Entry is reasonable. Set your stop-loss first.",
}

const defaultRecommendation = "Hold. Insufficient signal to act on."

// RiskAssessor derives position, risk level, recommendation, confidence and
// the stop/take pair from a classified quote. Pure and total: it never fails
// on a well-formed quote.
type RiskAssessor struct {
	cfg RiskConfig
}

// NewRiskAssessor creates an assessor. Zero-value config fields are replaced
// by the defaults.
func NewRiskAssessor(cfg RiskConfig) *RiskAssessor {
	def := DefaultRiskConfig()
	if cfg.VolEscalateAny <= 0 {
		cfg.VolEscalateAny = def.VolEscalateAny
	}
	if cfg.VolEscalateMedium <= 0 {
		cfg.VolEscalateMedium = def.VolEscalateMedium
	}
	if cfg.TightSpreadPct <= 0 {
		cfg.TightSpreadPct = def.TightSpreadPct
	}
	if cfg.WideSpreadPct <= 0 {
		cfg.WideSpreadPct = def.WideSpreadPct
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.MaxConfidence <= 0 {
		cfg.MaxConfidence = def.MaxConfidence
	}
	return &RiskAssessor{cfg: cfg}
}

// Assess computes the full risk outcome for a quote and its kind.
func (a *RiskAssessor) Assess(q *models.Quote, kind models.SignalKind) RiskOutcome {
	pos := a.position(q, kind)
	risk := a.riskLevel(q, kind)
	rec, ok := recommendations[riskPosition{risk, pos}]
	if !ok {
		rec = defaultRecommendation
	}

	out := RiskOutcome{
		Position:       pos,
		Risk:           risk,
		Recommendation: rec,
		Confidence:     a.confidence(q, kind),
		Leverage:       leverageByRisk[risk],
	}
	out.StopLoss, out.TakeProfit = a.stopTake(q, pos, risk)
	return out
}

// position maps rises and drops to Hold (chasing momentum and catching
// falling assets are both discouraged); volume spikes follow the change sign.
func (a *RiskAssessor) position(q *models.Quote, kind models.SignalKind) models.Position {
	switch {
	case kind.IsRise() || kind.IsDrop():
		return models.PositionHold
	case kind == models.KindVolumeSpike:
		if q.ChangePercent > 0 {
			return models.PositionLong
		}
		return models.PositionShort
	default:
		return models.PositionHold
	}
}

// riskLevel starts from the kind's base risk and escalates on volatility.
// Escalation is monotonic; nothing ever lowers the base risk.
func (a *RiskAssessor) riskLevel(q *models.Quote, kind models.SignalKind) models.RiskLevel {
	base := models.RiskMedium
	switch {
	case kind.IsExtreme():
		base = models.RiskExtreme
	case kind.IsBig():
		base = models.RiskHigh
	}

	vol := q.Volatility()
	switch {
	case vol > a.cfg.VolEscalateAny:
		return base.Escalate()
	case vol > a.cfg.VolEscalateMedium && base == models.RiskMedium:
		return models.RiskHigh
	default:
		return base
	}
}

func (a *RiskAssessor) confidence(q *models.Quote, kind models.SignalKind) float64 {
	c := 0.5
	switch {
	case kind.IsExtreme():
		c += 0.2
	case kind.IsBig():
		c += 0.1
	}

	// tight spread implies liquidity, wide spread the opposite; a quote
	// without book data reads as spread 0 and keeps the tight bonus
	spread := q.Spread()
	if spread < a.cfg.TightSpreadPct {
		c += 0.1
	} else if spread > a.cfg.WideSpreadPct {
		c -= 0.1
	}

	if c < a.cfg.MinConfidence {
		c = a.cfg.MinConfidence
	}
	if c > a.cfg.MaxConfidence {
		c = a.cfg.MaxConfidence
	}
	return c
}

// stopTake returns a risk-scaled stop/take pair, or nil/nil for Hold.
func (a *RiskAssessor) stopTake(q *models.Quote, pos models.Position, risk models.RiskLevel) (*float64, *float64) {
	m, ok := slMultiplier[risk]
	if !ok {
		m = 0.05
	}

	var sl, tp float64
	switch pos {
	case models.PositionLong:
		sl = q.Price * (1 - m)
		tp = q.Price * (1 + 2*m)
	case models.PositionShort:
		sl = q.Price * (1 + m)
		tp = q.Price * (1 - 2*m)
	default:
		return nil, nil
	}
	return &sl, &tp
}
