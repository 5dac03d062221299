package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *DeskConfig) Validate() error {
	if err := validateURL("channels.marketdata_url", c.Channels.MarketDataURL); err != nil {
		return err
	}
	if err := validateURL("channels.booking_url", c.Channels.BookingURL); err != nil {
		return err
	}
	if err := validateURL("channels.riskreport_url", c.Channels.RiskReportURL); err != nil {
		return err
	}

	if c.Channels.BufferSize < 1 {
		return errors.New("channels.buffer_size must be >= 1")
	}
	if c.Channels.WriteTimeout <= 0 {
		return errors.New("channels.write_timeout must be positive")
	}
	if c.Channels.PingInterval <= 0 {
		return errors.New("channels.ping_interval must be positive")
	}

	if c.Session.EventBuffer < 1 {
		return errors.New("session.event_buffer must be >= 1")
	}
	if c.Session.NotificationBuffer < 1 {
		return errors.New("session.notification_buffer must be >= 1")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func validateURL(field, url string) error {
	if url == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		return fmt.Errorf("%s must be a ws:// or wss:// URL, got %q", field, url)
	}
	return nil
}
