package models

import "time"

// SignalKind classifies a quote into a market-event category.
type SignalKind int

const (
	KindNeutral SignalKind = iota
	KindBigRise
	KindBigDrop
	KindExtremeRise
	KindExtremeDrop
	KindVolumeSpike
)

func (k SignalKind) String() string {
	switch k {
	case KindBigRise:
		return "big_rise"
	case KindBigDrop:
		return "big_drop"
	case KindExtremeRise:
		return "extreme_rise"
	case KindExtremeDrop:
		return "extreme_drop"
	case KindVolumeSpike:
		return "volume_spike"
	default:
		return "neutral"
	}
}

// Label is the human-readable headline for the kind.
func (k SignalKind) Label() string {
	switch k {
	case KindBigRise:
		return "Big Rise Signal"
	case KindBigDrop:
		return "Big Drop Alert"
	case KindExtremeRise:
		return "Extreme Rise Warning"
	case KindExtremeDrop:
		return "Extreme Drop Warning"
	case KindVolumeSpike:
		return "Volume Spike"
	default:
		return "Neutral"
	}
}

// IsRise reports whether the kind is an upward move (big or extreme).
func (k SignalKind) IsRise() bool { return k == KindBigRise || k == KindExtremeRise }

// IsDrop reports whether the kind is a downward move (big or extreme).
func (k SignalKind) IsDrop() bool { return k == KindBigDrop || k == KindExtremeDrop }

// IsExtreme reports whether the kind is an extreme move either way.
func (k SignalKind) IsExtreme() bool { return k == KindExtremeRise || k == KindExtremeDrop }

// IsBig reports whether the kind is a big (non-extreme) move either way.
func (k SignalKind) IsBig() bool { return k == KindBigRise || k == KindBigDrop }

// MarshalJSON encodes the kind as its string name.
func (k SignalKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Position is the suggested exposure direction.
type Position int

const (
	PositionHold Position = iota
	PositionLong
	PositionShort
)

func (p Position) String() string {
	switch p {
	case PositionLong:
		return "long"
	case PositionShort:
		return "short"
	default:
		return "hold"
	}
}

// MarshalJSON encodes the position as its string name.
func (p Position) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// RiskLevel orders risk from Low to Extreme. The ordering matters: the
// assessor escalates monotonically and never de-escalates.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
	RiskExtreme
)

func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "extreme"
	}
}

// Escalate returns the next level up, capped at Extreme.
func (r RiskLevel) Escalate() RiskLevel {
	if r >= RiskExtreme {
		return RiskExtreme
	}
	return r + 1
}

// MarshalJSON encodes the risk level as its string name.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// KeyLevels are pivot-derived support/resistance bands around the entry price.
type KeyLevels struct {
	Pivot       float64 `json:"pivot"`
	Resistance1 float64 `json:"resistance_1"`
	Support1    float64 `json:"support_1"`
	Resistance2 float64 `json:"resistance_2"`
	Support2    float64 `json:"support_2"`
}

// Disclaimer is attached verbatim to every emitted signal.
const Disclaimer = "Crypto is a high-risk investment. Signals are informational only and not investment advice. DYOR."

// Signal is the emitted artifact: one classified market event with its risk
// assessment and narrative. Immutable once assembled; ownership passes to the
// transport layer. StopLoss and TakeProfit are both set or both nil.
type Signal struct {
	Symbol         string     `json:"symbol"`
	BaseSymbol     string     `json:"base_symbol"`
	Kind           SignalKind `json:"signal_type"`
	Position       Position   `json:"position"`
	EntryPrice     float64    `json:"entry_price"`
	CurrentPrice   float64    `json:"current_price"`
	ChangePercent  float64    `json:"change_percent"`
	Volatility     float64    `json:"volatility"`
	Analysis       string     `json:"analysis"`
	KeyLevels      KeyLevels  `json:"key_levels"`
	Risk           RiskLevel  `json:"risk_level"`
	Recommendation string     `json:"recommendation"`
	StopLoss       *float64   `json:"stop_loss"`
	TakeProfit     *float64   `json:"take_profit"`
	Leverage       int        `json:"leverage"`
	Confidence     float64    `json:"confidence"`
	Timestamp      int64      `json:"-"`
	TimestampISO   string     `json:"timestamp"` // RFC3339
	Disclaimer     string     `json:"disclaimer"`
}

// Stamp fills the serialized timestamp from the epoch field.
func (s *Signal) Stamp() {
	s.TimestampISO = time.Unix(s.Timestamp, 0).UTC().Format(time.RFC3339)
}
