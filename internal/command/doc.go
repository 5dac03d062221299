// Package command builds the outbound plain-text commands for each channel.
//
// The grammar is space-delimited tokens, order significant:
//
//	MarketData:  ticker_for_chart <ticker>
//	MarketData:  book_id_for_deals <bookId>
//	Booking:     <tradingBookId> <customerBookId> <ticker> <quantity> <YYYY-MM-DD>
//	RiskReport:  <reportName> <bookId>
//
// Booking quantities are validated locally before anything is sent; invalid
// input never reaches the channel.
package command
