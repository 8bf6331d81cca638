package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	irepo "CoinPulse/internal/repository"
	"CoinPulse/pkg/logger"
)

type sentMessage struct {
	ChatID string
	Text   string
}

// fakeAPI captures sendMessage calls.
type fakeAPI struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			ChatID    string `json:"chat_id"`
			Text      string `json:"text"`
			ParseMode string `json:"parse_mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.ParseMode != "Markdown" {
			t.Fatalf("parse_mode = %q", body.ParseMode)
		}
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{ChatID: body.ChatID, Text: body.Text})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func (f *fakeAPI) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestPublishSignalToChannel(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	bot := NewBot("token", "@signals", irepo.NewMemorySubscriberStore(), logger.Nop(), WithAPIURL(srv.URL))
	if err := bot.PublishSignal(context.Background(), sampleSignal()); err != nil {
		t.Fatalf("publish: %v", err)
	}

	sent := api.messages()
	if len(sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sent))
	}
	if sent[0].ChatID != "@signals" {
		t.Fatalf("chat_id = %q, want channel", sent[0].ChatID)
	}
	if !strings.Contains(sent[0].Text, "BTC/USDT") {
		t.Fatalf("message does not carry the signal")
	}
}

func TestBroadcastPacedAndCounted(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	store := irepo.NewMemorySubscriberStore()
	for _, id := range []int64{101, 102, 103} {
		if _, err := store.Add(context.Background(), id); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}

	delay := 30 * time.Millisecond
	bot := NewBot("token", "", store, logger.Nop(), WithAPIURL(srv.URL), WithSendDelay(delay))

	start := time.Now()
	delivered, err := bot.BroadcastSignal(context.Background(), sampleSignal())
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if delivered != 3 {
		t.Fatalf("delivered = %d, want 3", delivered)
	}
	// two inter-send gaps
	if elapsed := time.Since(start); elapsed < 2*delay {
		t.Fatalf("broadcast took %v, want at least %v of pacing", elapsed, 2*delay)
	}
	if len(api.messages()) != 3 {
		t.Fatalf("sent %d messages, want 3", len(api.messages()))
	}
}

func TestBroadcastCancelledMidway(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	store := irepo.NewMemorySubscriberStore()
	for id := int64(1); id <= 10; id++ {
		_, _ = store.Add(context.Background(), id)
	}

	bot := NewBot("token", "", store, logger.Nop(), WithAPIURL(srv.URL), WithSendDelay(50*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	delivered, err := bot.BroadcastSignal(ctx, sampleSignal())
	if err == nil {
		t.Fatalf("cancelled broadcast must report the context error")
	}
	if delivered == 0 || delivered >= 10 {
		t.Fatalf("delivered = %d, want a partial count", delivered)
	}
}

func TestSubscribeCommands(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	store := irepo.NewMemorySubscriberStore()
	bot := NewBot("token", "", store, logger.Nop(), WithAPIURL(srv.URL))
	ctx := context.Background()

	bot.handleCommand(ctx, 42, "/subscribe")
	if ok, _ := store.Contains(ctx, 42); !ok {
		t.Fatalf("chat 42 should be subscribed")
	}

	bot.handleCommand(ctx, 42, "/subscribe")
	sent := api.messages()
	if !strings.Contains(sent[len(sent)-1].Text, "already") {
		t.Fatalf("double subscribe should say already subscribed: %q", sent[len(sent)-1].Text)
	}

	bot.handleCommand(ctx, 42, "/unsubscribe")
	if ok, _ := store.Contains(ctx, 42); ok {
		t.Fatalf("chat 42 should be unsubscribed")
	}

	bot.handleCommand(ctx, 42, "/help")
	sent = api.messages()
	if !strings.Contains(sent[len(sent)-1].Text, "/subscribe") {
		t.Fatalf("help should list commands")
	}

	// unknown commands are ignored
	before := len(api.messages())
	bot.handleCommand(ctx, 42, "/frobnicate")
	if len(api.messages()) != before {
		t.Fatalf("unknown command should not reply")
	}
}

func TestStatusCommandUsesProvider(t *testing.T) {
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	bot := NewBot("token", "", irepo.NewMemorySubscriberStore(), logger.Nop(),
		WithAPIURL(srv.URL),
		WithStatusFunc(func(context.Context) string { return "engine humming" }),
	)

	bot.handleCommand(context.Background(), 7, "/status")
	sent := api.messages()
	if len(sent) != 1 || sent[0].Text != "engine humming" {
		t.Fatalf("status reply = %+v", sent)
	}
}
