package model

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// BookKind distinguishes the two parallel book classifications.
type BookKind string

const (
	KindTrading  BookKind = "trading"
	KindCustomer BookKind = "customer"
)

// Book is an account-like grouping used for booking and deal lookup.
type Book struct {
	ID   string
	Name string
	Kind BookKind
}

// Deal is a recorded trade entry belonging to a book.
type Deal struct {
	Ticker   string
	Quantity decimal.Decimal
	Date     string // "YYYY-MM-DD"
}

// Quote is one OHLC price observation for a ticker on a date.
type Quote struct {
	Date  string // "YYYY-MM-DD"
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// ChartPoint is a quote projected for candlestick rendering.
type ChartPoint struct {
	TimeMillis int64 // UTC midnight of the quote date
	Open       decimal.Decimal
	High       decimal.Decimal
	Low        decimal.Decimal
	Close      decimal.Decimal
}

// ChartSeries is the most recent quote series for a single ticker.
type ChartSeries struct {
	Ticker string
	Points []ChartPoint
}

// ParseDate converts a "YYYY-MM-DD" string to UTC midnight.
//
// The components are parsed explicitly so the result never depends on
// locale or local time zone. This is a wire format contract: the backend
// always emits zero-padded ISO dates.
func ParseDate(s string) (time.Time, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return time.Time{}, fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	year, err := strconv.Atoi(s[0:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad year: %w", s, err)
	}
	month, err := strconv.Atoi(s[5:7])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad month: %w", s, err)
	}
	day, err := strconv.Atoi(s[8:10])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad day: %w", s, err)
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("date %q: month out of range", s)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date %q: day out of range", s)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// DateMillis converts a "YYYY-MM-DD" string to epoch milliseconds at UTC midnight.
func DateMillis(s string) (int64, error) {
	t, err := ParseDate(s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
