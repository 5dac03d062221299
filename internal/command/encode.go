package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/quantdesk/deskclient/internal/model"
)

// Errors
var (
	ErrInvalidQuantity = errors.New("quantity must be a finite number")
	ErrMissingField    = errors.New("missing booking field")
)

// Outbound command verbs for the MarketData channel.
const (
	TickerForChart = "ticker_for_chart"
	BookIDForDeals = "book_id_for_deals"
)

// SelectTicker encodes the chart ticker selection command.
func SelectTicker(ticker string) string {
	return TickerForChart + " " + ticker
}

// SelectDealsBook encodes the deals book selection command. Also issued by
// the booking side-effect rule to refresh the displayed book.
func SelectDealsBook(bookID string) string {
	return BookIDForDeals + " " + bookID
}

// RunReport encodes a risk report request.
func RunReport(name, bookID string) string {
	return name + " " + bookID
}

// BookingForm carries the user's booking input, quantity still unparsed.
type BookingForm struct {
	TradingBook  string
	CustomerBook string
	Ticker       string
	Quantity     string // raw user input, validated here
	Date         string // "YYYY-MM-DD"
}

// BookTrade validates the form and encodes the booking command. The raw
// quantity text is forwarded as typed once it passes validation.
func BookTrade(f BookingForm) (string, error) {
	for _, field := range []struct{ name, value string }{
		{"trading book", f.TradingBook},
		{"customer book", f.CustomerBook},
		{"ticker", f.Ticker},
	} {
		if field.value == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}

	if _, err := ParseQuantity(f.Quantity); err != nil {
		return "", err
	}
	if _, err := model.ParseDate(f.Date); err != nil {
		return "", fmt.Errorf("booking date: %w", err)
	}

	return strings.Join([]string{f.TradingBook, f.CustomerBook, f.Ticker, f.Quantity, f.Date}, " "), nil
}

// ParseQuantity checks that the input is a finite numeric value. Sign is
// not restricted by this layer.
func ParseQuantity(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidQuantity, s)
	}
	return d, nil
}
