package telegram

import (
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
)

var kindEmoji = map[models.SignalKind]string{
	models.KindExtremeRise: "🚀",
	models.KindExtremeDrop: "💥",
	models.KindBigRise:     "📈",
	models.KindBigDrop:     "📉",
	models.KindVolumeSpike: "🔊",
	models.KindNeutral:     "😴",
}

var riskEmoji = map[models.RiskLevel]string{
	models.RiskLow:     "🟢",
	models.RiskMedium:  "🟡",
	models.RiskHigh:    "🟠",
	models.RiskExtreme: "🔴",
}

var positionLabel = map[models.Position]string{
	models.PositionLong:  "🟩 LONG",
	models.PositionShort: "🟥 SHORT",
	models.PositionHold:  "⬜ HOLD",
}

// RenderSignal formats a signal as a Telegram Markdown message.
func RenderSignal(s *models.Signal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *%s* | %s\n\n", kindEmoji[s.Kind], s.Kind.Label(), s.Symbol)
	fmt.Fprintf(&b, "💰 Price: `%s` (%+.2f%%)\n", fmtPrice(s.CurrentPrice), s.ChangePercent)
	fmt.Fprintf(&b, "📍 Position: %s", positionLabel[s.Position])
	if s.Position != models.PositionHold && s.Leverage > 0 {
		fmt.Fprintf(&b, " (max %dx)", s.Leverage)
	}
	b.WriteString("\n")

	if s.StopLoss != nil && s.TakeProfit != nil {
		fmt.Fprintf(&b, "🎯 Entry: `%s`\n", fmtPrice(s.EntryPrice))
		fmt.Fprintf(&b, "🛑 Stop-loss: `%s`\n", fmtPrice(*s.StopLoss))
		fmt.Fprintf(&b, "💎 Take-profit: `%s`\n", fmtPrice(*s.TakeProfit))
	}

	if s.Analysis != "" {
		fmt.Fprintf(&b, "\n🧠 %s\n", s.Analysis)
	}

	fmt.Fprintf(&b, "\n📊 *Key levels*\n")
	fmt.Fprintf(&b, "R2 `%s` | R1 `%s`\n", fmtPrice(s.KeyLevels.Resistance2), fmtPrice(s.KeyLevels.Resistance1))
	fmt.Fprintf(&b, "Pivot `%s`\n", fmtPrice(s.KeyLevels.Pivot))
	fmt.Fprintf(&b, "S1 `%s` | S2 `%s`\n", fmtPrice(s.KeyLevels.Support1), fmtPrice(s.KeyLevels.Support2))

	fmt.Fprintf(&b, "\n%s Risk: *%s* | Confidence: %.0f%%\n", riskEmoji[s.Risk], strings.ToUpper(s.Risk.String()), s.Confidence*100)
	fmt.Fprintf(&b, "\n💡 %s\n", s.Recommendation)
	fmt.Fprintf(&b, "\n_%s_", s.Disclaimer)

	return b.String()
}

// RenderSummary formats the periodic market overview.
func RenderSummary(m *models.MarketSummary) string {
	var b strings.Builder

	b.WriteString("🌐 *Market Summary*\n\n")
	if !m.OK() {
		b.WriteString("⚠️ Market data is currently unavailable.")
		return b.String()
	}

	fmt.Fprintf(&b, "Sentiment: *%s*\n", m.Sentiment)
	if m.BellwetherPrice > 0 {
		label, _ := models.SplitSymbol(m.Bellwether)
		if label == "" {
			label = "BTC"
		}
		icon := "💠"
		if label == "BTC" {
			icon = "₿"
		}
		fmt.Fprintf(&b, "%s %s: `%s` (%+.2f%%)\n", icon, label, fmtPrice(m.BellwetherPrice), m.BellwetherChange)
	}
	fmt.Fprintf(&b, "Avg change: %+.2f%% | 📈 %d / 📉 %d",
		m.Stats.AvgChange, m.Stats.Gainers, m.Stats.Losers)
	if m.Stats.Extremes > 0 {
		fmt.Fprintf(&b, " | ⚡ %d extreme", m.Stats.Extremes)
	}
	b.WriteString("\n\n")

	for _, c := range m.Coins {
		arrow := "🔻"
		if c.Change >= 0 {
			arrow = "🔺"
		}
		fmt.Fprintf(&b, "%s %s `%s` (%+.2f%%)\n", arrow, c.Symbol, fmtPrice(c.Price), c.Change)
	}

	fmt.Fprintf(&b, "\n🕒 %s", time.Unix(m.Timestamp, 0).UTC().Format("2006-01-02 15:04 UTC"))
	return b.String()
}

func fmtPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("$%.0f", p)
	case p >= 1:
		return fmt.Sprintf("$%.2f", p)
	default:
		return fmt.Sprintf("$%.6f", p)
	}
}
