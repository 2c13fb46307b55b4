package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"RADAR_LISTEN_ADDR", "RADAR_HEADLESS", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"JavaScript", "Python", "Go", "Remote"}, cfg.Keywords)
	assert.Equal(t, "https://www.linkedin.com/jobs/search/", cfg.StartURL)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ".cookies/cookies-linkedin.json", cfg.CookiesPath)
	assert.Equal(t, ".data", cfg.DataDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.Watch.MaxWait)
	assert.Equal(t, 2*time.Second, cfg.Watch.MutationGrace)
	assert.Equal(t, 7, cfg.Watch.CardDepth)
	assert.Equal(t, time.Second, cfg.Watch.CountDelay)
	assert.Equal(t, 3*time.Second, cfg.Watch.CountFallback)
	assert.Equal(t, 3*time.Second, cfg.Tabs.MinDelay)
	assert.Equal(t, 5*time.Second, cfg.Tabs.MaxDelay)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
keywords: [Rust, Kubernetes]
listen_addr: ":9000"
headless: false
watch:
  max_wait: 4s
  card_depth: 5
tabs:
  min_delay: 100ms
  max_delay: 200ms
`)
	t.Setenv("RADAR_LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("RADAR_HEADLESS", "true")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Rust", "Kubernetes"}, cfg.Keywords)
	assert.Equal(t, "127.0.0.1:7000", cfg.ListenAddr)
	assert.True(t, cfg.Headless)
	assert.Equal(t, 4*time.Second, cfg.Watch.MaxWait)
	assert.Equal(t, 5, cfg.Watch.CardDepth)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.PollInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.Tabs.MinDelay)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(42), cfg.TelegramChatID)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "keywords: [unterminated"},
		{name: "bad chat id", env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{name: "bad headless", env: map[string]string{"RADAR_HEADLESS": "maybe"}},
		{name: "inverted tab delays", yaml: "tabs:\n  min_delay: 5s\n  max_delay: 1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.yaml)

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping file watcher test in short mode")
	}
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "keywords: [Go]\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { reloaded <- c })
	}()

	// give the watcher time to register
	time.Sleep(200 * time.Millisecond)
	writeFile(t, path, "keywords: [Elixir, Erlang]\n")

	select {
	case cfg := <-reloaded:
		assert.Equal(t, []string{"Elixir", "Erlang"}, cfg.Keywords)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	require.NoError(t, <-done)
}
