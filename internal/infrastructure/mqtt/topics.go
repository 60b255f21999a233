package mqtt

import "fmt"

// TopicPrefix is the base for all hwlog topics.
const TopicPrefix = "hwlog"

// Topics provides builders for hwlog MQTT topics.
//
//	topic := mqtt.Topics{}.RunSummary("4f1c...")
//	// Returns: "hwlog/runs/4f1c.../summary"
type Topics struct{}

// RunSummary returns the topic a run's summary is published to.
//
// Example: hwlog/runs/0b9e6f1e-8a52-4c1d-9c57-3e0d2a4f7a10/summary
func (Topics) RunSummary(runID string) string {
	return fmt.Sprintf("%s/runs/%s/summary", TopicPrefix, runID)
}

// AllRunSummaries returns a pattern matching every run summary.
//
// Pattern: hwlog/runs/+/summary
func (Topics) AllRunSummaries() string {
	return fmt.Sprintf("%s/runs/+/summary", TopicPrefix)
}
