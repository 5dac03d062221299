package channel

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
	ErrUnknownID     = errors.New("unknown channel id")
)

// ID names one of the three desk channels.
type ID string

const (
	MarketData ID = "marketdata"
	Booking    ID = "booking"
	RiskReport ID = "riskreport"
)

// IDs lists all channels in a stable order.
func IDs() []ID {
	return []ID{MarketData, Booking, RiskReport}
}

// RawMessage is one inbound payload tagged with its source channel.
type RawMessage struct {
	Channel    ID        // Which channel delivered this payload
	Data       []byte    // Raw message bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when the client read it
}

// Failure reports a terminal channel error to the dispatch loop.
type Failure struct {
	Channel ID
	Err     error
}

// ClientConfig configures a single channel client.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g. ws://localhost:9002)
	PingInterval time.Duration // Keepalive ping cadence
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Inbound message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   256,
	}
}

// ManagerConfig configures the three-channel Manager.
type ManagerConfig struct {
	MarketDataURL string
	BookingURL    string
	RiskReportURL string
	PingInterval  time.Duration
	WriteTimeout  time.Duration
	BufferSize    int // Per-channel inbound buffer size
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MarketDataURL: "ws://localhost:9002",
		BookingURL:    "ws://localhost:9003",
		RiskReportURL: "ws://localhost:9004",
		PingInterval:  30 * time.Second,
		WriteTimeout:  5 * time.Second,
		BufferSize:    256,
	}
}
