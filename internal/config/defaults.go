package config

import "time"

// Default values for optional configuration fields. The URLs match the
// backend's historical port layout: one listener per channel.
const (
	DefaultMarketDataURL = "ws://localhost:9002"
	DefaultBookingURL    = "ws://localhost:9003"
	DefaultRiskReportURL = "ws://localhost:9004"

	DefaultPingInterval = 30 * time.Second
	DefaultWriteTimeout = 5 * time.Second
	DefaultBufferSize   = 256

	DefaultEventBuffer        = 64
	DefaultNotificationBuffer = 8

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

func (c *DeskConfig) applyDefaults() {
	// Channel defaults
	if c.Channels.MarketDataURL == "" {
		c.Channels.MarketDataURL = DefaultMarketDataURL
	}
	if c.Channels.BookingURL == "" {
		c.Channels.BookingURL = DefaultBookingURL
	}
	if c.Channels.RiskReportURL == "" {
		c.Channels.RiskReportURL = DefaultRiskReportURL
	}
	if c.Channels.PingInterval == 0 {
		c.Channels.PingInterval = DefaultPingInterval
	}
	if c.Channels.WriteTimeout == 0 {
		c.Channels.WriteTimeout = DefaultWriteTimeout
	}
	if c.Channels.BufferSize == 0 {
		c.Channels.BufferSize = DefaultBufferSize
	}

	// Session defaults
	if c.Session.EventBuffer == 0 {
		c.Session.EventBuffer = DefaultEventBuffer
	}
	if c.Session.NotificationBuffer == 0 {
		c.Session.NotificationBuffer = DefaultNotificationBuffer
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}
