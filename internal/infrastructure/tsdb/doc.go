// Package tsdb writes water gauge samples to VictoriaMetrics.
//
// Samples are encoded as InfluxDB line protocol (via the influxdb-client-go
// point encoder) and POSTed in batches to the /write endpoint. The batch is
// flushed when it reaches batch_size or when the flush_interval timer fires.
//
// # Usage
//
//	client, err := tsdb.Connect(ctx, cfg.TSDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	dispatcher.Register("tsdb", client)
//
// VictoriaMetrics stores the point as gruenbeck_value{plugin="gruenbeck",
// type="gauge",type_instance="water"} at the sample timestamp.
//
// # Error Handling
//
// WriteSample only queues; flush errors are reported through SetOnError.
package tsdb
