//go:build integration

package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// Integration tests against a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func TestIntegration_ConnectAndClose(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "hwlog-int-connect"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}

	client.Close()
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestIntegration_RunSummaryRoundtrip(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "hwlog-int-publisher"

	received := make(chan RunSummary, 1)

	subOpts := buildClientOptions(cfg)
	subOpts.SetClientID("hwlog-int-subscriber")
	sub := pahomqtt.NewClient(subOpts)
	if token := sub.Connect(); !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscriber connect failed: %v", token.Error())
	}
	defer sub.Disconnect(100)

	token := sub.Subscribe(Topics{}.RunSummary("int-run"), 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		var s RunSummary
		if err := json.Unmarshal(msg.Payload(), &s); err == nil {
			received <- s
		}
	})
	if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscribe failed: %v", token.Error())
	}

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	g := &sensorlog.Grouping{
		Start: time.Now().UTC().Truncate(time.Second),
		Axis:  []int64{0, 1},
		Groups: []sensorlog.UnitGroup{{Unit: "W", Series: []sensorlog.TimeSeries{
			{Column: "Power [W]", Unit: "W", Device: "CPU", Samples: []float64{10, 20}},
		}}},
	}
	if err := client.PublishRunSummary(NewRunSummary("int-run", "int.csv", g)); err != nil {
		t.Fatalf("PublishRunSummary() error = %v", err)
	}

	select {
	case s := <-received:
		if s.RunID != "int-run" || len(s.Series) != 1 || *s.Series[0].Mean != 15 {
			t.Errorf("received summary = %+v", s)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for run summary")
	}

	// Clear the retained message.
	_ = client.Publish(Topics{}.RunSummary("int-run"), nil, 1, true)
}
