package router

import (
	"github.com/shopspring/decimal"

	"github.com/quantdesk/deskclient/internal/model"
)

// Kind tags the message variants. Exactly one is recognized per payload.
type Kind int

const (
	// KindNone marks an unrecognized payload. It is a no-op, not an error.
	KindNone Kind = iota
	KindDealsList
	KindTickersList
	KindBooksList
	KindQuoteSeries
	KindReportNames
	KindReportResult
	KindReportError
	KindBookingAck
)

// String returns the variant name for logging.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindDealsList:
		return "deals_list"
	case KindTickersList:
		return "tickers_list"
	case KindBooksList:
		return "books_list"
	case KindQuoteSeries:
		return "quote_series"
	case KindReportNames:
		return "report_names"
	case KindReportResult:
		return "report_result"
	case KindReportError:
		return "report_error"
	case KindBookingAck:
		return "booking_ack"
	default:
		return "unknown"
	}
}

// ReportField is one generic report row. Order follows the source payload.
type ReportField struct {
	Key   string
	Value string
}

// Message is the closed tagged union of inbound message variants.
// Only the fields for the tagged Kind are populated.
type Message struct {
	Kind Kind

	// KindDealsList
	Deals []model.Deal

	// KindTickersList
	Tickers []string

	// KindBooksList (both lists always set, possibly empty)
	TradingBooks  []model.Book
	CustomerBooks []model.Book

	// KindQuoteSeries
	Ticker string
	Quotes []model.Quote

	// KindReportNames
	ReportNames []string

	// KindReportResult
	ReportFields []ReportField

	// KindReportError
	ReportError string

	// KindBookingAck (opaque count/text)
	BookingAck string
}

// Stats contains classification counters.
type Stats struct {
	Received    int64
	Classified  int64
	NoOps       int64
	ParseErrors int64
}

// Wire types for JSON parsing

// marketDataWire is the wire shape of a MarketData channel push. Valid
// traffic populates exactly one of the recognized keys.
type marketDataWire struct {
	Deals   []dealWire  `json:"deals"`
	Tickers []string    `json:"tickers"`
	Books   *booksWire  `json:"books"`
	Quotes  []quoteWire `json:"quotes"`
	Ticker  string      `json:"ticker"` // sibling context for quotes
}

// dealWire is the wire format of one deal row.
type dealWire struct {
	Ticker   string          `json:"ticker"`
	Quantity decimal.Decimal `json:"quantity"`
	Date     string          `json:"date"`
}

// booksWire is the wire format of the books object. Either sub-list may be
// omitted by the source.
type booksWire struct {
	TradingBook  []bookWire `json:"trading_book"`
	CustomerBook []bookWire `json:"customer_book"`
}

// bookWire is the wire format of one book entry.
type bookWire struct {
	ID   string `json:"ID"`
	Name string `json:"Name"`
}

// quoteWire is the wire format of one OHLC observation.
type quoteWire struct {
	Date  string          `json:"date"` // "YYYY-MM-DD"
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// riskReportWire is used to detect the two named RiskReport payload shapes.
type riskReportWire struct {
	RiskReports []string `json:"risk_reports"`
	ErrorMsg    *string  `json:"error_msg"`
}
