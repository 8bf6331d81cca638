package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
server:
  port: 9090
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
monitor:
  watchlist:
    - BTC/USDT
    - ETH/USDT
  check_interval: 1m
  history_size: 25
thresholds:
  big_move_pct: 4.0
  extreme_move_pct: 9.0
telegram:
  enabled: false
kafka:
  enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Monitor.CheckInterval != time.Minute {
		t.Fatalf("check interval = %v", cfg.Monitor.CheckInterval)
	}
	if len(cfg.Monitor.Watchlist) != 2 {
		t.Fatalf("watchlist = %v", cfg.Monitor.Watchlist)
	}
	if cfg.Thresholds.BigMovePct != 4.0 {
		t.Fatalf("big move = %v", cfg.Thresholds.BigMovePct)
	}
}

func TestLoadRejectsMissingWatchlist(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("empty watchlist must fail validation")
	}
}

func TestLoadRejectsEnabledTelegramWithoutToken(t *testing.T) {
	cfg := `
environment: test
monitor:
  watchlist: [BTC/USDT]
telegram:
  enabled: true
`
	if _, err := Load(writeConfig(t, cfg)); err == nil {
		t.Fatalf("enabled telegram without token must fail validation")
	}
}

func TestLoadWithEnvSuppliesRequiredSecrets(t *testing.T) {
	cfg := `
environment: production
monitor:
  watchlist: [BTC/USDT]
telegram:
  enabled: true
`
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret-token")

	c, err := LoadWithEnv(writeConfig(t, cfg))
	if err != nil {
		t.Fatalf("token from env must satisfy validation: %v", err)
	}
	if c.Telegram.BotToken != "secret-token" {
		t.Fatalf("token = %q", c.Telegram.BotToken)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "secret-token")
	t.Setenv("WATCHLIST", "SOL/USDT,XRP/USDT")
	t.Setenv("PORT", "8123")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.Telegram.BotToken != "secret-token" {
		t.Fatalf("token not overridden")
	}
	if len(cfg.Monitor.Watchlist) != 2 || cfg.Monitor.Watchlist[0] != "SOL/USDT" {
		t.Fatalf("watchlist not overridden: %v", cfg.Monitor.Watchlist)
	}
	if cfg.Server.Port != 8123 {
		t.Fatalf("port not overridden: %d", cfg.Server.Port)
	}
}
