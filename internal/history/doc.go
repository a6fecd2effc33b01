// Package history tracks which daily readings have already been reported.
//
// The appliance returns a rolling window of 14 daily totals. A watermark,
// the day boundary of the last successful poll, is persisted so that a
// restart or an outage never emits the same day twice and never skips one
// that is still inside the window.
//
// Two backends implement Store:
//   - FileStore keeps the watermark as decimal Unix seconds in history.dat
//   - SQLiteStore keeps it in a single-row table (see migrations/)
//
// Reconcile is pure: given a parsed batch, the current boundary and the
// stored watermark it returns the readings to dispatch, oldest first.
package history
