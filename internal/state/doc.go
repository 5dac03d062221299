// Package state holds the authoritative UI-facing snapshot of the desk.
//
// The store keeps only the latest known list or series per category; there
// is no history. Inbound messages replace the lists being selected from but
// never touch the selections themselves, so a selection can dangle after a
// list refresh — downstream rendering treats a dangling selection as "none".
// The deals list is request-then-reactive: it always reflects the most
// recent deals push, which the client trusts to answer its last request.
package state
