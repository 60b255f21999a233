// Package influxdb exports grouped sensor series to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, health checks and a batched, blocking series export.
//
// # Data Model
//
// Every non-missing sample becomes one point in the configured measurement
// (default "hwlog"):
//
//	hwlog,column=Core\ Temp\ [°C],device=CPU,run_id=...,unit=°C value=42.5 <time>
//
// The point time is the log start plus the sample offset, written with
// second precision. Exports of the same log are kept apart by run_id.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	n, err := client.WriteGrouping(ctx, grouping, runID)
package influxdb
