// Package channel implements the desk's three backend message channels.
//
// Each channel is one independent bidirectional WebSocket stream:
//   - MarketData: reference lists, deals, quote series; plain-text commands out
//   - Booking:    plain-text booking commands out; opaque ack text in
//   - RiskReport: plain-text report commands out; report payloads in
//
// Channels fail independently. A dropped connection is observed and logged
// but never recovered: there is no reconnect or backoff, and the remaining
// channels keep processing. The Manager merges the three inbound streams
// into one tagged message channel, preserving per-channel delivery order;
// no ordering holds across channels.
package channel
