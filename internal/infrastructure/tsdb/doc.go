// Package tsdb exports grouped sensor series to VictoriaMetrics.
//
// It writes InfluxDB line protocol to the /write endpoint over plain HTTP.
//
// # Usage
//
//	client, err := tsdb.Connect(ctx, cfg.TSDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	n, err := client.WriteGrouping(ctx, grouping, runID)
//
// # Data Model
//
// One line per non-missing sample:
//
//	hwlog,column=Core\ Temp\ [°C],device=CPU,run_id=...,unit=°C value=42.5 1709294404000000000
//
// VictoriaMetrics exposes it as hwlog_value{column=...,device=...}.
//
// # Error Handling
//
// Batches are sent synchronously. The first rejected batch stops the export
// and its error is returned along with the number of lines already accepted.
package tsdb
