package state

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/quantdesk/deskclient/internal/model"
	"github.com/quantdesk/deskclient/internal/router"
)

// Selections are the user's current picks. Mutated only by explicit
// selection events, never by inbound messages.
type Selections struct {
	Ticker         string
	TradingBook    string
	CustomerBook   string
	DealsBook      string
	RiskReport     string
	RiskReportBook string
}

// Snapshot is one consistent view of everything the desk is looking at.
type Snapshot struct {
	Tickers       []string
	TradingBooks  []model.Book
	CustomerBooks []model.Book
	Deals         []model.Deal
	Chart         model.ChartSeries
	ReportNames   []string
	ReportOutput  string
	Selections    Selections
}

// Store applies classified messages and selection events to the snapshot.
type Store struct {
	logger *slog.Logger

	mu   sync.RWMutex
	snap Snapshot
	subs []chan Snapshot
}

// New creates an empty Store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// Snapshot returns a copy of the current state. Slices are copied so the
// caller can never observe a later mutation.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnapshot(s.snap)
}

// Subscribe returns a channel receiving a snapshot after every change.
// Slow subscribers miss intermediate snapshots rather than block the
// dispatch loop; the latest one always arrives eventually.
func (s *Store) Subscribe(buffer int) <-chan Snapshot {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Snapshot, buffer)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Apply transitions the snapshot by one inbound message. The transition is
// pure with respect to the current snapshot plus the message: applying the
// same message twice leaves the same state as applying it once. A message
// that fails (bad quote date) changes nothing.
func (s *Store) Apply(msg router.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Kind {
	case router.KindNone, router.KindBookingAck:
		// BookingAck carries no state; the side-effect rule and the
		// booking notification consume it elsewhere.
		return nil

	case router.KindDealsList:
		s.snap.Deals = msg.Deals

	case router.KindTickersList:
		// Selection left alone even if it dangles.
		s.snap.Tickers = msg.Tickers

	case router.KindBooksList:
		s.snap.TradingBooks = msg.TradingBooks
		s.snap.CustomerBooks = msg.CustomerBooks

	case router.KindQuoteSeries:
		if len(msg.Quotes) == 0 {
			// Chart projection needs at least one point.
			return nil
		}
		points, err := projectQuotes(msg.Quotes)
		if err != nil {
			return fmt.Errorf("project quotes for %s: %w", msg.Ticker, err)
		}
		s.snap.Chart = model.ChartSeries{Ticker: msg.Ticker, Points: points}

	case router.KindReportNames:
		s.snap.ReportNames = msg.ReportNames

	case router.KindReportResult:
		s.snap.ReportOutput = formatReport(msg.ReportFields)

	case router.KindReportError:
		s.snap.ReportOutput = msg.ReportError

	default:
		return fmt.Errorf("apply: unhandled message kind %s", msg.Kind)
	}

	s.notifyLocked()
	return nil
}

// Select* record explicit user selection events.

func (s *Store) SelectTicker(sym string)         { s.setSelection(func(sel *Selections) { sel.Ticker = sym }) }
func (s *Store) SelectTradingBook(id string)     { s.setSelection(func(sel *Selections) { sel.TradingBook = id }) }
func (s *Store) SelectCustomerBook(id string)    { s.setSelection(func(sel *Selections) { sel.CustomerBook = id }) }
func (s *Store) SelectDealsBook(id string)       { s.setSelection(func(sel *Selections) { sel.DealsBook = id }) }
func (s *Store) SelectRiskReport(name string)    { s.setSelection(func(sel *Selections) { sel.RiskReport = name }) }
func (s *Store) SelectRiskReportBook(id string)  { s.setSelection(func(sel *Selections) { sel.RiskReportBook = id }) }

// Selections returns the current selections.
func (s *Store) Selections() Selections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Selections
}

func (s *Store) setSelection(f func(*Selections)) {
	s.mu.Lock()
	f(&s.snap.Selections)
	s.notifyLocked()
	s.mu.Unlock()
}

// notifyLocked pushes a snapshot copy to every subscriber without blocking.
func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := copySnapshot(s.snap)
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Drain one stale snapshot and retry so the freshest wins.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// projectQuotes converts quotes to chart points in the order received.
// The backend sends them chronologically ascending; order is not
// re-validated here.
func projectQuotes(quotes []model.Quote) ([]model.ChartPoint, error) {
	points := make([]model.ChartPoint, 0, len(quotes))
	for _, q := range quotes {
		millis, err := model.DateMillis(q.Date)
		if err != nil {
			return nil, err
		}
		points = append(points, model.ChartPoint{
			TimeMillis: millis,
			Open:       q.Open,
			High:       q.High,
			Low:        q.Low,
			Close:      q.Close,
		})
	}
	return points, nil
}

// formatReport renders generic report rows as one "key: value" line each.
func formatReport(fields []router.ReportField) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.Key)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}
	return b.String()
}

func copySnapshot(in Snapshot) Snapshot {
	out := in
	out.Tickers = append([]string(nil), in.Tickers...)
	out.TradingBooks = append([]model.Book(nil), in.TradingBooks...)
	out.CustomerBooks = append([]model.Book(nil), in.CustomerBooks...)
	out.Deals = append([]model.Deal(nil), in.Deals...)
	out.ReportNames = append([]string(nil), in.ReportNames...)
	out.Chart.Points = append([]model.ChartPoint(nil), in.Chart.Points...)
	return out
}
