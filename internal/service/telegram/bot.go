package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	xhttp "CoinPulse/pkg/http"
	"CoinPulse/pkg/logger"
)

const defaultAPIURL = "https://api.telegram.org"

// sendDelay paces broadcasts so we stay under the Bot API rate limit.
const defaultSendDelay = 100 * time.Millisecond

const helpText = `🤖 *CoinPulse Bot*

/subscribe - receive trading signals
/unsubscribe - stop receiving signals
/status - engine status
/help - this message

` + models.Disclaimer

// StatusFunc supplies the /status reply body.
type StatusFunc func(ctx context.Context) string

// Bot delivers signals over the Telegram Bot API. It publishes to a fixed
// channel and broadcasts to the subscriber set, and runs a long-poll command
// loop for subscription management.
type Bot struct {
	apiURL    string
	token     string
	channelID string
	store     repository.SubscriberStore
	http      *xhttp.Client
	sendDelay time.Duration
	status    StatusFunc
	log       *logger.Logger
}

// BotOption configures Bot.
type BotOption func(*Bot)

// WithAPIURL overrides the Bot API endpoint. Used by tests.
func WithAPIURL(url string) BotOption {
	return func(b *Bot) { b.apiURL = strings.TrimRight(url, "/") }
}

// WithSendDelay overrides the per-recipient broadcast pacing.
func WithSendDelay(d time.Duration) BotOption {
	return func(b *Bot) { b.sendDelay = d }
}

// WithStatusFunc attaches the /status reply provider.
func WithStatusFunc(f StatusFunc) BotOption {
	return func(b *Bot) { b.status = f }
}

// WithBotHTTPClient overrides the underlying HTTP client.
func WithBotHTTPClient(hc *xhttp.Client) BotOption {
	return func(b *Bot) { b.http = hc }
}

// NewBot creates a transport. channelID may be empty, disabling channel
// publication while keeping broadcasts.
func NewBot(token, channelID string, store repository.SubscriberStore, log *logger.Logger, opts ...BotOption) *Bot {
	b := &Bot{
		apiURL:    defaultAPIURL,
		token:     token,
		channelID: channelID,
		store:     store,
		http:      xhttp.NewClient(xhttp.WithTimeout(35 * time.Second)),
		sendDelay: defaultSendDelay,
		log:       log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetStatusFunc attaches the /status reply provider after construction.
// The status source (the monitor) is built after the transport.
func (b *Bot) SetStatusFunc(f StatusFunc) { b.status = f }

// PublishSignal posts the rendered signal to the configured channel.
func (b *Bot) PublishSignal(ctx context.Context, s *models.Signal) error {
	if b.channelID == "" {
		return nil
	}
	return b.send(ctx, b.channelID, RenderSignal(s))
}

// BroadcastSignal sends the rendered signal to every subscriber, sequentially
// and paced. Individual failures are logged and skipped; delivered counts
// successful sends.
func (b *Bot) BroadcastSignal(ctx context.Context, s *models.Signal) (int, error) {
	return b.broadcast(ctx, RenderSignal(s))
}

// PublishSummary posts the market overview to the channel and subscribers.
func (b *Bot) PublishSummary(ctx context.Context, m *models.MarketSummary) error {
	text := RenderSummary(m)
	if b.channelID != "" {
		if err := b.send(ctx, b.channelID, text); err != nil {
			return err
		}
	}
	_, err := b.broadcast(ctx, text)
	return err
}

// SubscriberCount reports the subscriber set size, 0 on store failure.
func (b *Bot) SubscriberCount(ctx context.Context) int {
	n, err := b.store.Count(ctx)
	if err != nil {
		return 0
	}
	return int(n)
}

func (b *Bot) broadcast(ctx context.Context, text string) (int, error) {
	ids, err := b.store.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("load subscribers: %w", err)
	}

	delivered := 0
	for i, id := range ids {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if err := b.send(ctx, strconv.FormatInt(id, 10), text); err != nil {
			b.log.Warn("broadcast send failed", logger.Int64("chat_id", id), logger.Error(err))
			continue
		}
		delivered++
		if i < len(ids)-1 {
			select {
			case <-ctx.Done():
				return delivered, ctx.Err()
			case <-time.After(b.sendDelay):
			}
		}
	}
	return delivered, nil
}

type apiResult struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (b *Bot) send(ctx context.Context, chatID, text string) error {
	var res apiResult
	err := b.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/bot%s/sendMessage", b.apiURL, b.token),
		Body: map[string]interface{}{
			"chat_id":    chatID,
			"text":       text,
			"parse_mode": "Markdown",
		},
	}, &res)
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("telegram: %s", res.Description)
	}
	return nil
}

// --- command loop ---

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResult struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Poll runs the getUpdates long-poll loop until ctx is cancelled, handling
// subscription commands.
func (b *Bot) Poll(ctx context.Context) {
	var offset int64
	for ctx.Err() == nil {
		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.log.Warn("poll updates failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			b.handleCommand(ctx, u.Message.Chat.ID, strings.TrimSpace(u.Message.Text))
		}
	}
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	var res updatesResult
	err := b.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/bot%s/getUpdates", b.apiURL, b.token),
		QueryParams: map[string][]string{
			"offset":  {strconv.FormatInt(offset, 10)},
			"timeout": {"30"},
		},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("telegram: getUpdates not ok")
	}
	return res.Result, nil
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, text string) {
	cmd := text
	if i := strings.IndexAny(cmd, " @"); i > 0 {
		cmd = cmd[:i]
	}

	var reply string
	switch cmd {
	case "/start", "/help":
		reply = helpText
	case "/subscribe":
		added, err := b.store.Add(ctx, chatID)
		switch {
		case err != nil:
			reply = "⚠️ Something went wrong, try again later."
		case added:
			reply = "✅ Subscribed. You will receive trading signals."
		default:
			reply = "You are already subscribed."
		}
	case "/unsubscribe":
		removed, err := b.store.Remove(ctx, chatID)
		switch {
		case err != nil:
			reply = "⚠️ Something went wrong, try again later."
		case removed:
			reply = "👋 Unsubscribed. No more signals."
		default:
			reply = "You were not subscribed."
		}
	case "/status":
		if b.status != nil {
			reply = b.status(ctx)
		} else {
			reply = fmt.Sprintf("Engine is running. Subscribers: %d.", b.SubscriberCount(ctx))
		}
	default:
		return
	}

	if err := b.send(ctx, strconv.FormatInt(chatID, 10), reply); err != nil {
		b.log.Warn("command reply failed", logger.Int64("chat_id", chatID), logger.Error(err))
	}
}
