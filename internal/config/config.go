package config

import "time"

// DeskConfig is the root configuration for the desk client.
type DeskConfig struct {
	Channels ChannelsConfig `yaml:"channels"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ChannelsConfig holds the three backend channel endpoints and transport
// settings shared by all of them.
type ChannelsConfig struct {
	MarketDataURL string        `yaml:"marketdata_url"`
	BookingURL    string        `yaml:"booking_url"`
	RiskReportURL string        `yaml:"riskreport_url"`
	PingInterval  time.Duration `yaml:"ping_interval"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	BufferSize    int           `yaml:"buffer_size"`
}

// SessionConfig holds dispatch loop settings.
type SessionConfig struct {
	EventBuffer        int `yaml:"event_buffer"`
	NotificationBuffer int `yaml:"notification_buffer"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
