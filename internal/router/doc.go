// Package router classifies inbound channel payloads into typed messages.
//
// Classification is key-presence based: each MarketData push carries exactly
// one of the recognized keys (deals, tickers, books, quotes); a payload with
// none of them is a no-op, not an error. RiskReport payloads resolve with
// priority risk_reports > error_msg > generic report fields. Booking payloads
// are opaque acknowledgment text and always classify.
//
// A payload that fails structural parsing yields a ParseError for that single
// message only; callers log it and keep processing the channel.
package router
