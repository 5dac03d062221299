package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "desk.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
channels:
  marketdata_url: ws://desk.example:9002
  booking_url: ws://desk.example:9003
  riskreport_url: ws://desk.example:9004
  ping_interval: 10s
logging:
  level: debug
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Channels.MarketDataURL != "ws://desk.example:9002" {
		t.Errorf("Channels.MarketDataURL = %q, want %q", cfg.Channels.MarketDataURL, "ws://desk.example:9002")
	}
	if cfg.Channels.PingInterval != 10*time.Second {
		t.Errorf("Channels.PingInterval = %v, want 10s", cfg.Channels.PingInterval)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DESK_HOST", "desk.internal")

	yaml := `
channels:
  marketdata_url: ws://${TEST_DESK_HOST}:9002
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Channels.MarketDataURL != "ws://desk.internal:9002" {
		t.Errorf("Channels.MarketDataURL = %q, want %q", cfg.Channels.MarketDataURL, "ws://desk.internal:9002")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "channels:\n  marketdata_url: ws://desk.example:9002\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Channels.BookingURL != DefaultBookingURL {
		t.Errorf("Channels.BookingURL = %q, want default %q", cfg.Channels.BookingURL, DefaultBookingURL)
	}
	if cfg.Channels.BufferSize != DefaultBufferSize {
		t.Errorf("Channels.BufferSize = %d, want default %d", cfg.Channels.BufferSize, DefaultBufferSize)
	}
	if cfg.Session.EventBuffer != DefaultEventBuffer {
		t.Errorf("Session.EventBuffer = %d, want default %d", cfg.Session.EventBuffer, DefaultEventBuffer)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DeskConfig)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *DeskConfig) {},
			wantErr: "",
		},
		{
			name:    "missing marketdata url",
			mutate:  func(c *DeskConfig) { c.Channels.MarketDataURL = "" },
			wantErr: "channels.marketdata_url is required",
		},
		{
			name:    "non-websocket url",
			mutate:  func(c *DeskConfig) { c.Channels.BookingURL = "http://desk.example" },
			wantErr: `channels.booking_url must be a ws:// or wss:// URL, got "http://desk.example"`,
		},
		{
			name:    "bad buffer size",
			mutate:  func(c *DeskConfig) { c.Channels.BufferSize = -1 },
			wantErr: "channels.buffer_size must be >= 1",
		},
		{
			name:    "bad log level",
			mutate:  func(c *DeskConfig) { c.Logging.Level = "loud" },
			wantErr: `logging.level must be one of debug, info, warn, error, got "loud"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
