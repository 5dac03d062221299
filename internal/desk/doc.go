// Package desk runs the single-threaded dispatch loop tying the channels,
// router and state store together.
//
// All inbound messages and user operations funnel through one goroutine and
// are processed to completion one at a time, so no handler ever observes a
// half-applied transition. Messages on one channel are handled in delivery
// order; nothing is guaranteed across channels. There are no request/reply
// correlation tokens anywhere: the client trusts that the next deals push
// answers the last deals request it issued.
//
// The one cross-channel rule lives here: when a booking acknowledgment
// arrives and the book just traded into is the book whose deals are on
// display, the desk re-requests that book's deals on the MarketData channel.
package desk
