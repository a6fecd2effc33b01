// Package poller runs the collector's poll cycle and the loop that invokes it.
//
// A cycle does nothing before 23:00 local time. From then on every call
// queries the appliance, parses the reply, persists the day boundary as the
// new watermark and dispatches the readings that have not been reported
// yet:
//
//	Idle (hour < 23) ──► return nil, no request
//	Polling          ──► fetch ─► parse ─► save watermark ─► reconcile ─► dispatch
//
// Fetch and parse failures abort the cycle without touching the watermark.
// Watermark errors only downgrade the cycle to single-value mode.
//
// Runner stands in for a monitoring host: it calls Cycle every interval and,
// after a failure, suspends for a doubling delay capped at one day.
package poller
