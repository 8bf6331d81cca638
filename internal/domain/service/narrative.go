package service

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// Narrator produces the analysis text for a classified quote. Implementations
// must be total: the delegated variant falls back internally rather than
// surfacing failures to callers.
type Narrator interface {
	Explain(ctx context.Context, q *models.Quote, kind models.SignalKind, market *models.MarketSummary) string
}
