// Package mqtt publishes hwlog run summaries to an MQTT broker.
//
// After a run, hwlog publishes one retained JSON document per run to
// hwlog/runs/{run_id}/summary. Dashboards subscribe to
// hwlog/runs/+/summary to pick up new runs.
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) when the broker is not on localhost
//   - Pass credentials through HWLOG_MQTT_USERNAME and HWLOG_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishRunSummary(mqtt.NewRunSummary(runID, logFile, grouping))
package mqtt
