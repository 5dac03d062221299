// desk is the trading-desk dashboard client. It opens the three backend
// channels, runs the dispatch loop, and renders the state snapshots in a
// terminal UI.
//
// Usage: desk [--config configs/desk.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/quantdesk/deskclient/internal/channel"
	"github.com/quantdesk/deskclient/internal/config"
	"github.com/quantdesk/deskclient/internal/desk"
	"github.com/quantdesk/deskclient/internal/state"
	"github.com/quantdesk/deskclient/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("desk " + version.String())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, logFile, err := setupLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := channel.NewManager(channel.ManagerConfig{
		MarketDataURL: cfg.Channels.MarketDataURL,
		BookingURL:    cfg.Channels.BookingURL,
		RiskReportURL: cfg.Channels.RiskReportURL,
		PingInterval:  cfg.Channels.PingInterval,
		WriteTimeout:  cfg.Channels.WriteTimeout,
		BufferSize:    cfg.Channels.BufferSize,
	}, logger)

	if err := manager.Start(ctx); err != nil {
		logger.Error("failed to connect channels", "error", err)
		fmt.Fprintln(os.Stderr, "connect channels:", err)
		os.Exit(1)
	}
	defer manager.Stop()

	store := state.New(logger)
	session := desk.NewSession(desk.Config{
		EventBuffer:        cfg.Session.EventBuffer,
		NotificationBuffer: cfg.Session.NotificationBuffer,
	}, manager, store, logger)

	if err := session.Start(ctx); err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	defer session.Stop(context.Background())

	ui := newUI(session)
	if _, err := tea.NewProgram(ui, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("ui exited", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.DeskConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadAndValidate(path)
}

// setupLogger writes logs to a file: stdout belongs to the terminal UI.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, *os.File, error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	f, err := os.OpenFile("desk.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(f, opts)
	} else {
		handler = slog.NewTextHandler(f, opts)
	}
	return slog.New(handler), f, nil
}
