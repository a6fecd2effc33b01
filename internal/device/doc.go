// Package device talks to the Gruenbeck water softener's embedded web interface.
//
// The appliance exposes an undocumented query endpoint, POST /mux_http, that
// returns a flat XML document:
//
//	<data>
//	  <code>ok</code>
//	  <D_Y_2_1>412</D_Y_2_1>
//	  <D_Y_2_2>388</D_Y_2_2>
//	  ...
//	  <D_Y_2_14>0</D_Y_2_14>
//	</data>
//
// D_Y_2_<n> holds the water consumption of the n-th most recent day
// (1 = today, 14 = thirteen days ago).
//
// # Components
//
//   - Client: issues the query with bounded retry and a 1 MiB response cap
//   - Parse: extracts the daily values in document order
//
// # Error Handling
//
// Failures are classified with sentinel errors so the poller can report
// them without inspecting messages:
//
//	if errors.Is(err, device.ErrNetwork) { ... }
//	if errors.Is(err, device.ErrDevice) { ... }
//
// # Thread Safety
//
// Client is safe for concurrent use, although the collector only ever runs
// one poll cycle at a time.
package device
