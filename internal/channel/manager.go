package channel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager owns the three desk channels and merges their inbound streams.
type Manager interface {
	// Start connects all three channels.
	Start(ctx context.Context) error

	// Stop closes all channels.
	Stop() error

	// Messages returns the merged inbound stream, tagged per channel.
	// Per-channel delivery order is preserved; no cross-channel order holds.
	Messages() <-chan RawMessage

	// Failures returns terminal per-channel errors. A failed channel stays
	// dead; the others are unaffected.
	Failures() <-chan Failure

	// Send writes a text command on the named channel.
	Send(id ID, text string) error

	// Connected reports whether the named channel is currently up.
	Connected(id ID) bool
}

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	clients map[ID]Client

	merged   chan RawMessage
	failures chan Failure

	done chan struct{}
	wg   sync.WaitGroup
}

// NewManager creates a Manager for the three desk channels.
func NewManager(cfg ManagerConfig, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	clientCfg := func(url string) ClientConfig {
		return ClientConfig{
			URL:          url,
			PingInterval: cfg.PingInterval,
			WriteTimeout: cfg.WriteTimeout,
			BufferSize:   cfg.BufferSize,
		}
	}

	return &manager{
		cfg:    cfg,
		logger: logger,
		clients: map[ID]Client{
			MarketData: NewClient(MarketData, clientCfg(cfg.MarketDataURL), logger),
			Booking:    NewClient(Booking, clientCfg(cfg.BookingURL), logger),
			RiskReport: NewClient(RiskReport, clientCfg(cfg.RiskReportURL), logger),
		},
		merged:   make(chan RawMessage, 3*cfg.BufferSize),
		failures: make(chan Failure, len(IDs())),
		done:     make(chan struct{}),
	}
}

// Start connects all three channels and begins forwarding.
func (m *manager) Start(ctx context.Context) error {
	for _, id := range IDs() {
		if err := m.clients[id].Connect(ctx); err != nil {
			return fmt.Errorf("connect %s channel: %w", id, err)
		}
	}

	for _, id := range IDs() {
		m.wg.Add(1)
		go m.forward(id)
	}

	m.logger.Info("channel manager started",
		"marketdata", m.cfg.MarketDataURL,
		"booking", m.cfg.BookingURL,
		"riskreport", m.cfg.RiskReportURL,
	)

	return nil
}

// Stop closes all channels.
func (m *manager) Stop() error {
	close(m.done)
	var first error
	for _, id := range IDs() {
		if err := m.clients[id].Close(); err != nil && first == nil {
			first = err
		}
	}
	m.wg.Wait()
	return first
}

// Messages returns the merged inbound stream.
func (m *manager) Messages() <-chan RawMessage {
	return m.merged
}

// Failures returns the channel failure stream.
func (m *manager) Failures() <-chan Failure {
	return m.failures
}

// Send writes a text command on the named channel.
func (m *manager) Send(id ID, text string) error {
	c, ok := m.clients[id]
	if !ok {
		return ErrUnknownID
	}
	return c.Send([]byte(text))
}

// Connected reports whether the named channel is currently up.
func (m *manager) Connected(id ID) bool {
	c, ok := m.clients[id]
	return ok && c.IsConnected()
}

// forward moves one channel's messages into the merged stream in order.
// One goroutine per channel keeps per-channel ordering intact.
func (m *manager) forward(id ID) {
	defer m.wg.Done()

	c := m.clients[id]
	for {
		select {
		case <-m.done:
			return
		case msg, ok := <-c.Messages():
			if !ok {
				return
			}
			select {
			case m.merged <- msg:
			case <-m.done:
				return
			}
		case err := <-c.Errors():
			// Flush anything the read loop buffered before it died.
			for {
				select {
				case msg := <-c.Messages():
					select {
					case m.merged <- msg:
					case <-m.done:
						return
					}
				default:
					m.logger.Warn("channel failed", "channel", string(id), "error", err)
					select {
					case m.failures <- Failure{Channel: id, Err: err}:
					default:
					}
					// No reconnect: the channel stays dead.
					return
				}
			}
		}
	}
}
