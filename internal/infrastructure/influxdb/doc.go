// Package influxdb writes water gauge samples to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library: connection check on
// startup, non-blocking batched writes, and an error callback for write
// failures that surface asynchronously.
//
// # Point layout
//
// Each sample becomes one point:
//
//	gruenbeck,plugin=gruenbeck,type=gauge,type_instance=water value=412 <ts>
//
// The timestamp is the day boundary the reading belongs to, so most points
// are backdated by up to 13 days.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.SetOnError(func(err error) { log.Error("influx write failed", "error", err) })
//	dispatcher.Register("influxdb", client)
package influxdb
