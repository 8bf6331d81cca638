package narrative

import (
	"context"
	"fmt"
	"strings"

	"CoinPulse/internal/domain/models"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

// LLMConfig configures the model-backed narrator. BaseURL points at any
// OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultLLMConfig returns conservative generation parameters.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       "gpt-4o-mini",
		MaxTokens:   400,
		Temperature: 0.7,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// closesProvider supplies recent closing prices for trend context. Optional;
// a nil provider or a failed fetch simply omits the trend section.
type closesProvider interface {
	FetchOHLCV(ctx context.Context, symbol, timeframe string, limit int) (*models.OHLCV, error)
}

// LLMNarrator asks a language model for the analysis paragraph and falls
// back to the rule narrator on any failure. Callers never see an error;
// Explain is total.
type LLMNarrator struct {
	cfg      LLMConfig
	client   *xhttp.Client
	fallback *RuleNarrator
	closes   closesProvider
	log      *logger.Logger
}

// NewLLMNarrator creates the narrator. closes may be nil.
func NewLLMNarrator(cfg LLMConfig, client *xhttp.Client, closes closesProvider, log *logger.Logger) *LLMNarrator {
	def := DefaultLLMConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	return &LLMNarrator{
		cfg:      cfg,
		client:   client,
		fallback: NewRuleNarrator(),
		closes:   closes,
		log:      log,
	}
}

// Explain generates the analysis text, degrading to the rule templates when
// the endpoint is unreachable, misconfigured or returns an empty completion.
func (n *LLMNarrator) Explain(ctx context.Context, q *models.Quote, kind models.SignalKind, market *models.MarketSummary) string {
	if n.cfg.BaseURL == "" || n.cfg.APIKey == "" {
		return n.fallback.Explain(ctx, q, kind, market)
	}

	text, err := n.complete(ctx, n.prompt(ctx, q, kind, market))
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			n.log.Warn("llm narration failed, using rule templates",
				logger.String("symbol", q.Symbol), logger.Error(err))
		}
		return n.fallback.Explain(ctx, q, kind, market)
	}
	return strings.TrimSpace(text)
}

func (n *LLMNarrator) complete(ctx context.Context, prompt string) (string, error) {
	var out chatResponse
	err := n.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    strings.TrimRight(n.cfg.BaseURL, "/") + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + n.cfg.APIKey,
		},
		Body: chatRequest{
			Model: n.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: "You are a concise crypto market analyst. Reply with a short analysis paragraph, no headers, no bullet lists."},
				{Role: "user", Content: prompt},
			},
			MaxTokens:   n.cfg.MaxTokens,
			Temperature: n.cfg.Temperature,
		},
	}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return out.Choices[0].Message.Content, nil
}

// prompt builds the user message: quote facts, optional recent-close trend,
// optional market context.
func (n *LLMNarrator) prompt(ctx context.Context, q *models.Quote, kind models.SignalKind, market *models.MarketSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze %s: price %s, 24h change %+.2f%%, 24h high %s, 24h low %s, volatility %.2f%%. Event: %s.",
		q.Symbol, formatPrice(q.Price), q.ChangePercent,
		formatPrice(q.High24h), formatPrice(q.Low24h), q.Volatility(), kind.Label())

	if n.closes != nil {
		if ohlcv, err := n.closes.FetchOHLCV(ctx, q.Symbol, "1h", 20); err == nil && ohlcv.Len() > 1 {
			closes := make([]string, 0, ohlcv.Len())
			for _, c := range ohlcv.Closes {
				closes = append(closes, fmt.Sprintf("%.4f", c))
			}
			fmt.Fprintf(&b, " Recent hourly closes, oldest first: %s.", strings.Join(closes, ", "))
		}
	}

	if market != nil && market.OK() {
		fmt.Fprintf(&b, " Overall market sentiment: %s, average change %+.2f%%, %d gainers vs %d losers.",
			market.Sentiment, market.Stats.AvgChange, market.Stats.Gainers, market.Stats.Losers)
	}

	b.WriteString(" Give a 2-4 sentence assessment of momentum and risk. Do not give financial advice.")
	return b.String()
}
