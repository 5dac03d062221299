package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/quantdesk/deskclient/internal/channel"
	"github.com/quantdesk/deskclient/internal/model"
)

// Router classifies raw channel payloads into Messages.
type Router struct {
	logger *slog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a Router.
func New(logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{logger: logger}
}

// Stats returns current classification counters.
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Classify maps one raw payload from the named channel to a Message.
// A structural parse failure is an error for this payload only; the caller
// drops it and keeps reading the channel.
func (r *Router) Classify(ch channel.ID, payload []byte) (Message, error) {
	r.count(func(s *Stats) { s.Received++ })

	var msg Message
	var err error

	switch ch {
	case channel.MarketData:
		msg, err = r.classifyMarketData(payload)
	case channel.Booking:
		// Opaque acknowledgment text; always classifies.
		msg = Message{Kind: KindBookingAck, BookingAck: string(payload)}
	case channel.RiskReport:
		msg, err = r.classifyRiskReport(payload)
	default:
		err = fmt.Errorf("classify: %w: %s", channel.ErrUnknownID, ch)
	}

	if err != nil {
		r.count(func(s *Stats) { s.ParseErrors++ })
		return Message{}, err
	}
	if msg.Kind == KindNone {
		r.count(func(s *Stats) { s.NoOps++ })
		return msg, nil
	}
	r.count(func(s *Stats) { s.Classified++ })
	return msg, nil
}

// classifyMarketData inspects which of the recognized keys is present.
// Valid traffic carries exactly one concern per push, so the first match
// wins; a payload with none of the keys is a no-op.
func (r *Router) classifyMarketData(payload []byte) (Message, error) {
	var wire marketDataWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Message{}, fmt.Errorf("parse marketdata payload: %w", err)
	}

	switch {
	case wire.Deals != nil:
		deals := make([]model.Deal, 0, len(wire.Deals))
		for _, d := range wire.Deals {
			deals = append(deals, model.Deal{
				Ticker:   d.Ticker,
				Quantity: d.Quantity,
				Date:     d.Date,
			})
		}
		return Message{Kind: KindDealsList, Deals: deals}, nil

	case wire.Tickers != nil:
		return Message{Kind: KindTickersList, Tickers: wire.Tickers}, nil

	case wire.Books != nil:
		// Both sub-lists are always supplied downstream, empty when the
		// source omitted them.
		return Message{
			Kind:          KindBooksList,
			TradingBooks:  convertBooks(wire.Books.TradingBook, model.KindTrading),
			CustomerBooks: convertBooks(wire.Books.CustomerBook, model.KindCustomer),
		}, nil

	case wire.Quotes != nil:
		quotes := make([]model.Quote, 0, len(wire.Quotes))
		for _, q := range wire.Quotes {
			quotes = append(quotes, model.Quote{
				Date:  q.Date,
				Open:  q.Open,
				High:  q.High,
				Low:   q.Low,
				Close: q.Close,
			})
		}
		return Message{Kind: KindQuoteSeries, Ticker: wire.Ticker, Quotes: quotes}, nil
	}

	return Message{Kind: KindNone}, nil
}

// classifyRiskReport resolves payloads with priority
// risk_reports > error_msg > generic report fields.
func (r *Router) classifyRiskReport(payload []byte) (Message, error) {
	var wire riskReportWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Message{}, fmt.Errorf("parse riskreport payload: %w", err)
	}

	if wire.RiskReports != nil {
		return Message{Kind: KindReportNames, ReportNames: wire.RiskReports}, nil
	}
	if wire.ErrorMsg != nil {
		return Message{Kind: KindReportError, ReportError: *wire.ErrorMsg}, nil
	}

	fields, err := decodeReportFields(payload)
	if err != nil {
		return Message{}, fmt.Errorf("parse report fields: %w", err)
	}
	return Message{Kind: KindReportResult, ReportFields: fields}, nil
}

func convertBooks(in []bookWire, kind model.BookKind) []model.Book {
	out := make([]model.Book, 0, len(in))
	for _, b := range in {
		out = append(out, model.Book{ID: b.ID, Name: b.Name, Kind: kind})
	}
	return out
}

// decodeReportFields walks the payload object token by token so the field
// order of the source JSON is preserved for display.
func decodeReportFields(payload []byte) ([]ReportField, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("report payload is not an object")
	}

	fields := make([]ReportField, 0, 8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("report field key is not a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		fields = append(fields, ReportField{Key: key, Value: formatReportValue(raw)})
	}

	return fields, nil
}

// formatReportValue renders one report value for a "key: value" line.
// Strings are unquoted; everything else keeps its JSON text.
func formatReportValue(raw json.RawMessage) string {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func (r *Router) count(f func(*Stats)) {
	r.mu.Lock()
	f(&r.stats)
	r.mu.Unlock()
}
