package desk

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quantdesk/deskclient/internal/channel"
	"github.com/quantdesk/deskclient/internal/command"
	"github.com/quantdesk/deskclient/internal/router"
	"github.com/quantdesk/deskclient/internal/state"
)

// Errors
var (
	ErrNotRunning        = errors.New("session not running")
	ErrNoReportSelection = errors.New("no report or book selected")
)

// Notification is a transient booking-succeeded signal for the UI.
type Notification struct {
	Ack string // opaque acknowledgment text from the booking channel
	At  time.Time
}

// Config holds Session settings.
type Config struct {
	EventBuffer        int // user operation queue size
	NotificationBuffer int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		EventBuffer:        64,
		NotificationBuffer: 8,
	}
}

// Session is the desk's coordination actor.
type Session struct {
	id     uuid.UUID
	cfg    Config
	chans  channel.Manager
	router *router.Router
	store  *state.Store
	logger *slog.Logger

	events        chan func()
	notifications chan Notification

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates a Session over an already-constructed channel manager
// and store.
func NewSession(cfg Config, chans channel.Manager, store *state.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()

	return &Session{
		id:            id,
		cfg:           cfg,
		chans:         chans,
		router:        router.New(logger),
		store:         store,
		logger:        logger.With("session", id.String()),
		events:        make(chan func(), cfg.EventBuffer),
		notifications: make(chan Notification, cfg.NotificationBuffer),
	}
}

// Store returns the session's state store.
func (s *Session) Store() *state.Store {
	return s.store
}

// Notifications returns the transient booking feedback stream.
func (s *Session) Notifications() <-chan Notification {
	return s.notifications
}

// RouterStats returns classification counters.
func (s *Session) RouterStats() router.Stats {
	return s.router.Stats()
}

// Start launches the dispatch loop.
func (s *Session) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("desk session started")
	return nil
}

// Stop shuts the dispatch loop down.
func (s *Session) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("desk session stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop is the single dispatch goroutine. One message or operation is
// processed to completion before the next is taken.
func (s *Session) loop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case raw, ok := <-s.chans.Messages():
			if !ok {
				s.logger.Info("inbound stream closed")
				return
			}
			s.handleInbound(raw)
		case f := <-s.events:
			f()
		case fail := <-s.chans.Failures():
			// The failed channel stays dead; everything else keeps going.
			s.logger.Error("channel failure",
				"channel", string(fail.Channel),
				"error", fail.Err,
			)
		}
	}
}

// handleInbound classifies and applies one raw payload, then runs the
// booking side-effect rule when applicable.
func (s *Session) handleInbound(raw channel.RawMessage) {
	msg, err := s.router.Classify(raw.Channel, raw.Data)
	if err != nil {
		s.logger.Warn("dropping malformed payload",
			"channel", string(raw.Channel),
			"error", err,
		)
		return
	}
	if msg.Kind == router.KindNone {
		s.logger.Debug("ignoring unrecognized payload", "channel", string(raw.Channel))
		return
	}

	// The side-effect comparison uses the selections as they stood when the
	// ack was received, not a later snapshot.
	selections := s.store.Selections()

	if err := s.store.Apply(msg); err != nil {
		s.logger.Warn("dropping unappliable message",
			"kind", msg.Kind.String(),
			"error", err,
		)
		return
	}

	if msg.Kind == router.KindBookingAck {
		s.onBookingAck(msg.BookingAck, selections, raw.ReceivedAt)
	}
}

// onBookingAck enforces the cross-channel rule: the deals view must reflect
// the book just traded into, if that book is the one currently displayed.
// On a mismatch the displayed list goes stale and stays that way; no
// refresh is issued for a book the user is not looking at.
func (s *Session) onBookingAck(ack string, sel state.Selections, at time.Time) {
	if sel.DealsBook != "" && sel.TradingBook == sel.DealsBook {
		if err := s.chans.Send(channel.MarketData, command.SelectDealsBook(sel.DealsBook)); err != nil {
			s.logger.Warn("deals refresh after booking failed", "error", err)
		}
	}

	select {
	case s.notifications <- Notification{Ack: ack, At: at}:
	default:
		// UI not draining; the flash is transient anyway.
	}
}

// do runs f on the dispatch loop and waits for it to complete.
func (s *Session) do(f func()) error {
	if s.ctx == nil {
		return ErrNotRunning
	}

	done := make(chan struct{})
	select {
	case s.events <- func() { f(); close(done) }:
	case <-s.ctx.Done():
		return ErrNotRunning
	}

	select {
	case <-done:
		return nil
	case <-s.ctx.Done():
		return ErrNotRunning
	}
}

// SelectTicker records the ticker selection and requests its chart series.
func (s *Session) SelectTicker(ticker string) error {
	return s.do(func() {
		s.store.SelectTicker(ticker)
		if err := s.chans.Send(channel.MarketData, command.SelectTicker(ticker)); err != nil {
			s.logger.Warn("ticker selection send failed", "error", err)
		}
	})
}

// SelectTradingBook records the booking-side trading book selection.
func (s *Session) SelectTradingBook(id string) error {
	return s.do(func() { s.store.SelectTradingBook(id) })
}

// SelectCustomerBook records the customer book selection.
func (s *Session) SelectCustomerBook(id string) error {
	return s.do(func() { s.store.SelectCustomerBook(id) })
}

// SelectDealsBook records the deals book selection and requests its deals.
func (s *Session) SelectDealsBook(id string) error {
	return s.do(func() {
		s.store.SelectDealsBook(id)
		if err := s.chans.Send(channel.MarketData, command.SelectDealsBook(id)); err != nil {
			s.logger.Warn("deals book selection send failed", "error", err)
		}
	})
}

// SelectRiskReport records the report selection.
func (s *Session) SelectRiskReport(name string) error {
	return s.do(func() { s.store.SelectRiskReport(name) })
}

// SelectRiskReportBook records the report book selection.
func (s *Session) SelectRiskReportBook(id string) error {
	return s.do(func() { s.store.SelectRiskReportBook(id) })
}

// BookTrade validates the form and submits the booking command. Validation
// failures are returned synchronously and nothing is sent. An empty form
// date books for today (UTC).
func (s *Session) BookTrade(f command.BookingForm) error {
	if f.Date == "" {
		f.Date = time.Now().UTC().Format("2006-01-02")
	}

	cmd, err := command.BookTrade(f)
	if err != nil {
		return err
	}

	return s.do(func() {
		if err := s.chans.Send(channel.Booking, cmd); err != nil {
			s.logger.Warn("booking send failed", "error", err)
		}
	})
}

// RunReport requests the currently selected report for the currently
// selected report book.
func (s *Session) RunReport() error {
	var runErr error
	err := s.do(func() {
		sel := s.store.Selections()
		if sel.RiskReport == "" || sel.RiskReportBook == "" {
			runErr = ErrNoReportSelection
			return
		}
		if err := s.chans.Send(channel.RiskReport, command.RunReport(sel.RiskReport, sel.RiskReportBook)); err != nil {
			s.logger.Warn("report request send failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	return runErr
}

// SendRaw forwards free-text input to the MarketData channel unchanged.
func (s *Session) SendRaw(text string) error {
	return s.do(func() {
		if err := s.chans.Send(channel.MarketData, text); err != nil {
			s.logger.Warn("raw send failed", "error", err)
		}
	})
}
