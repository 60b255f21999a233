package influxdb_test

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/hwlog/internal/infrastructure/config"
	"github.com/nerrad567/hwlog/internal/infrastructure/influxdb"
	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// fakeInflux records the line protocol bodies posted to /api/v2/write.
type fakeInflux struct {
	mu        sync.Mutex
	bodies    []string
	precision string
	failing   bool
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.bodies = append(f.bodies, string(body))
		f.precision = r.URL.Query().Get("precision")
		failing := f.failing
		f.mu.Unlock()
		if failing {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"invalid","message":"rejected"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var lines []string
	for _, b := range f.bodies {
		for _, l := range strings.Split(strings.TrimSpace(b), "\n") {
			if l != "" {
				lines = append(lines, l)
			}
		}
	}
	return lines
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:     true,
		URL:         url,
		Token:       "hwlog-test-token",
		Org:         "lab",
		Bucket:      "sensors",
		BatchSize:   2,
		Measurement: "hwlog",
	}
}

func testGrouping() *sensorlog.Grouping {
	return &sensorlog.Grouping{
		Start: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Axis:  []int64{0, 2, 4},
		Groups: []sensorlog.UnitGroup{{
			Unit: "°C",
			Series: []sensorlog.TimeSeries{{
				Column:      "Core Temp [°C]",
				Unit:        "°C",
				Device:      "CPU",
				KnownDevice: true,
				Samples:     []float64{40, math.NaN(), 42.5},
			}},
		}},
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{})
	defer srv.Close()

	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{})
	url := srv.URL
	srv.Close()

	_, err := influxdb.Connect(context.Background(), testConfig(url))
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClose_StopsWrites(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{})
	defer srv.Close()

	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	client.Close()
	client.Close() // second close is a no-op

	if _, err := client.WriteGrouping(context.Background(), testGrouping(), "run"); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("WriteGrouping() after Close error = %v, want ErrNotConnected", err)
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() after Close error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestWriteGrouping(t *testing.T) {
	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	n, err := client.WriteGrouping(context.Background(), testGrouping(), "run-1")
	if err != nil {
		t.Fatalf("WriteGrouping() error = %v", err)
	}
	if n != 2 {
		t.Errorf("WriteGrouping() = %d points, want 2 (NaN skipped)", n)
	}

	lines := fake.lines()
	if len(lines) != 2 {
		t.Fatalf("server received %d lines, want 2: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], `hwlog,column=Core\ Temp\ [°C],device=CPU,run_id=run-1,unit=°C value=40 `) {
		t.Errorf("first line = %q", lines[0])
	}
	wantTime := time.Date(2024, 3, 1, 12, 0, 4, 0, time.UTC).Unix()
	if !strings.HasSuffix(lines[1], " "+strconv.FormatInt(wantTime, 10)) {
		t.Errorf("second line = %q, want timestamp %d", lines[1], wantTime)
	}
	if fake.precision != "s" {
		t.Errorf("precision = %q, want s", fake.precision)
	}
}

func TestWriteGrouping_Rejected(t *testing.T) {
	fake := &fakeInflux{failing: true}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	client, err := influxdb.Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if _, err := client.WriteGrouping(context.Background(), testGrouping(), "run-1"); !errors.Is(err, influxdb.ErrWriteFailed) {
		t.Errorf("WriteGrouping() error = %v, want ErrWriteFailed", err)
	}
}

func TestPoints(t *testing.T) {
	points := influxdb.Points("bench", testGrouping(), "abc")
	if len(points) != 2 {
		t.Fatalf("Points() = %d, want 2", len(points))
	}

	line := write.PointToLineProtocol(points[1], time.Second)
	want := `bench,column=Core\ Temp\ [°C],device=CPU,run_id=abc,unit=°C value=42.5 1709294404` + "\n"
	if line != want {
		t.Errorf("line = %q, want %q", line, want)
	}
}
