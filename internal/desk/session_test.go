package desk

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/quantdesk/deskclient/internal/channel"
	"github.com/quantdesk/deskclient/internal/command"
	"github.com/quantdesk/deskclient/internal/state"
)

// fakeManager is an in-memory channel.Manager recording outbound sends.
type fakeManager struct {
	messages chan channel.RawMessage
	failures chan channel.Failure

	mu   sync.Mutex
	sent map[channel.ID][]string
}

func newFakeManager() *fakeManager {
	return &fakeManager{
		messages: make(chan channel.RawMessage, 64),
		failures: make(chan channel.Failure, 8),
		sent:     make(map[channel.ID][]string),
	}
}

func (f *fakeManager) Start(ctx context.Context) error       { return nil }
func (f *fakeManager) Stop() error                           { return nil }
func (f *fakeManager) Messages() <-chan channel.RawMessage   { return f.messages }
func (f *fakeManager) Failures() <-chan channel.Failure      { return f.failures }
func (f *fakeManager) Connected(id channel.ID) bool          { return true }

func (f *fakeManager) Send(id channel.ID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[id] = append(f.sent[id], text)
	return nil
}

func (f *fakeManager) take(id channel.ID) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sent[id]
	f.sent[id] = nil
	return out
}

func (f *fakeManager) inject(id channel.ID, payload string) {
	f.messages <- channel.RawMessage{Channel: id, Data: []byte(payload), ReceivedAt: time.Now()}
}

func startSession(t *testing.T) (*Session, *fakeManager) {
	t.Helper()

	fm := newFakeManager()
	s := NewSession(DefaultConfig(), fm, state.New(nil), nil)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
	return s, fm
}

func waitNotification(t *testing.T, s *Session) Notification {
	t.Helper()
	select {
	case n := <-s.Notifications():
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for booking notification")
		return Notification{}
	}
}

func TestBookingAck_MatchingBookRefreshesDeals(t *testing.T) {
	s, fm := startSession(t)

	if err := s.SelectTradingBook("T1"); err != nil {
		t.Fatalf("SelectTradingBook failed: %v", err)
	}
	if err := s.SelectDealsBook("T1"); err != nil {
		t.Fatalf("SelectDealsBook failed: %v", err)
	}
	fm.take(channel.MarketData) // drop the selection-driven request

	fm.inject(channel.Booking, "1")
	waitNotification(t, s)

	got := fm.take(channel.MarketData)
	if len(got) != 1 {
		t.Fatalf("marketdata sends = %v, want exactly one refresh", got)
	}
	if got[0] != "book_id_for_deals T1" {
		t.Errorf("refresh command = %q, want %q", got[0], "book_id_for_deals T1")
	}
}

func TestBookingAck_DifferentBookLeavesDealsStale(t *testing.T) {
	s, fm := startSession(t)

	if err := s.SelectTradingBook("T1"); err != nil {
		t.Fatalf("SelectTradingBook failed: %v", err)
	}
	if err := s.SelectDealsBook("T2"); err != nil {
		t.Fatalf("SelectDealsBook failed: %v", err)
	}
	fm.take(channel.MarketData)

	fm.inject(channel.Booking, "1")
	waitNotification(t, s)

	if got := fm.take(channel.MarketData); len(got) != 0 {
		t.Errorf("marketdata sends = %v, want none (stale view preserved)", got)
	}
}

func TestBookingAck_NoSelectionsNoRefresh(t *testing.T) {
	s, fm := startSession(t)

	fm.inject(channel.Booking, "1")
	waitNotification(t, s)

	if got := fm.take(channel.MarketData); len(got) != 0 {
		t.Errorf("marketdata sends = %v, want none without selections", got)
	}
}

func TestEndToEnd_TickersThenQuotes(t *testing.T) {
	s, fm := startSession(t)

	fm.inject(channel.MarketData, `{"tickers":["AAPL","MSFT"]}`)
	fm.inject(channel.MarketData,
		`{"quotes":[{"date":"2020-01-02","open":"300","high":"310","low":"295","close":"305"}],"ticker":"AAPL"}`)

	deadline := time.Now().Add(time.Second)
	for {
		snap := s.Store().Snapshot()
		if len(snap.Chart.Points) == 1 {
			if snap.Chart.Ticker != "AAPL" {
				t.Errorf("Chart.Ticker = %s, want AAPL", snap.Chart.Ticker)
			}
			p := snap.Chart.Points[0]
			want := time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
			if p.TimeMillis != want {
				t.Errorf("TimeMillis = %d, want %d", p.TimeMillis, want)
			}
			if p.Open.String() != "300" || p.High.String() != "310" || p.Low.String() != "295" || p.Close.String() != "305" {
				t.Errorf("OHLC = %s/%s/%s/%s", p.Open, p.High, p.Low, p.Close)
			}
			if len(snap.Tickers) != 2 {
				t.Errorf("len(Tickers) = %d, want 2", len(snap.Tickers))
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for chart series")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBookTrade_EncodesAndSends(t *testing.T) {
	s, fm := startSession(t)

	err := s.BookTrade(command.BookingForm{
		TradingBook:  "T1",
		CustomerBook: "C1",
		Ticker:       "AAPL",
		Quantity:     "10",
		Date:         "2024-03-05",
	})
	if err != nil {
		t.Fatalf("BookTrade failed: %v", err)
	}

	got := fm.take(channel.Booking)
	if len(got) != 1 || got[0] != "T1 C1 AAPL 10 2024-03-05" {
		t.Errorf("booking sends = %v, want [%q]", got, "T1 C1 AAPL 10 2024-03-05")
	}
}

func TestBookTrade_ValidationSuppressesSend(t *testing.T) {
	s, fm := startSession(t)

	err := s.BookTrade(command.BookingForm{
		TradingBook:  "T1",
		CustomerBook: "C1",
		Ticker:       "AAPL",
		Quantity:     "abc",
		Date:         "2024-03-05",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	if got := fm.take(channel.Booking); len(got) != 0 {
		t.Errorf("booking sends = %v, want none", got)
	}
}

func TestRunReport_UsesCurrentSelections(t *testing.T) {
	s, fm := startSession(t)

	if err := s.RunReport(); err != ErrNoReportSelection {
		t.Errorf("RunReport = %v, want ErrNoReportSelection", err)
	}

	if err := s.SelectRiskReport("historical_var"); err != nil {
		t.Fatalf("SelectRiskReport failed: %v", err)
	}
	if err := s.SelectRiskReportBook("T1"); err != nil {
		t.Fatalf("SelectRiskReportBook failed: %v", err)
	}
	if err := s.RunReport(); err != nil {
		t.Fatalf("RunReport failed: %v", err)
	}

	got := fm.take(channel.RiskReport)
	if len(got) != 1 || got[0] != "historical_var T1" {
		t.Errorf("riskreport sends = %v, want [%q]", got, "historical_var T1")
	}
}

func TestMalformedPayloadDoesNotStopLoop(t *testing.T) {
	s, fm := startSession(t)

	fm.inject(channel.MarketData, `{"deals":`)
	fm.inject(channel.MarketData, `{"tickers":["AAPL"]}`)

	deadline := time.Now().Add(time.Second)
	for {
		if len(s.Store().Snapshot().Tickers) == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("loop stopped processing after malformed payload")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestChannelFailureDoesNotStopOthers(t *testing.T) {
	s, fm := startSession(t)

	fm.failures <- channel.Failure{Channel: channel.RiskReport, Err: context.Canceled}
	fm.inject(channel.MarketData, `{"tickers":["AAPL"]}`)

	deadline := time.Now().Add(time.Second)
	for {
		if len(s.Store().Snapshot().Tickers) == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("loop stopped after a channel failure")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSendRaw_Passthrough(t *testing.T) {
	s, fm := startSession(t)

	if err := s.SendRaw("hello backend"); err != nil {
		t.Fatalf("SendRaw failed: %v", err)
	}

	got := fm.take(channel.MarketData)
	if len(got) != 1 || got[0] != "hello backend" {
		t.Errorf("marketdata sends = %v, want [%q]", got, "hello backend")
	}
}
