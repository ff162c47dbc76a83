// Package history keeps a SQLite ledger of download runs.
//
// Every batch is stored as a run row when it starts, gets one outcome row
// per song that reached a terminal state, and is closed with its totals
// when it ends. The ledger is append-only; nothing in a batch reads it.
package history
