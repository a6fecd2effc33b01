// Package mqtt publishes water gauge samples to an MQTT broker.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing one JSON message per sample
//   - Last Will and Testament (LWT) plus retained online/offline status
//
// # Topics
//
//	gruenbeck/gauge/water      one message per dispatched sample
//	gruenbeck/system/status    retained online/offline status (LWT)
//
// # Payload
//
//	{"plugin":"gruenbeck","type":"gauge","type_instance":"water",
//	 "value":412,"timestamp":"2026-03-10T22:00:00Z","cycle_id":"..."}
//
// The timestamp is the day the reading belongs to, not the publish time.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	dispatcher.Register("mqtt", client)
package mqtt
