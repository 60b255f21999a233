package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

const benchLog = "Date,Time,CPU Temp [°C],GPU Temp [°C],Load [%]\n" +
	"01.01.2024,10:00:00,45.2,50,10\n" +
	"01.01.2024,10:00:05,46.0,51,20\n" +
	"Date,Time,CPU Temp [°C],GPU Temp [°C],Load [%]\n" +
	",,CPU,GPU,\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// testConfig writes a config file using UTF-8 logs, with the database
// enabled when withDB is set.
func testConfig(t *testing.T, dir string, withDB bool) string {
	t.Helper()
	content := `
ingest:
  encoding: utf-8
render:
  format: svg
  width: 400
  height: 200
logging:
  level: debug
  format: text
  output: stderr
database:
  enabled: ` + map[bool]string{true: "true", false: "false"}[withDB] + `
  path: "` + filepath.Join(dir, "hwlog.db") + `"
  wal_mode: true
  busy_timeout: 5
`
	return writeFile(t, dir, "config.yaml", content)
}

// runCLI executes the app and returns stdout, stderr and the error.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HWLOG_CONFIG", "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, append([]string{"hwlog"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

// TestRun_InvalidConfig verifies run fails with an invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	logFile := writeFile(t, dir, "bench.csv", benchLog)

	_, _, err := runCLI(t, "", "--config", "/nonexistent/path/config.yaml", logFile)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want loading config", err)
	}
}

func TestRun_MissingLogFileArgument(t *testing.T) {
	_, _, err := runCLI(t, "")
	if err == nil {
		t.Fatal("run() without a log file should fail")
	}
	if code := exitCode(err); code != 2 {
		t.Errorf("exitCode() = %d, want 2", code)
	}
}

func TestRun_PlotWithLayoutFile(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)
	logFile := writeFile(t, dir, "bench.csv", benchLog)
	layoutFile := writeFile(t, dir, "layout.txt", "CPU Temp [°C]\nLoad [%]\n")

	stdout, stderr, err := runCLI(t, "", "--config", cfg, "plot", "--layout", layoutFile, logFile)
	if err != nil {
		t.Fatalf("run() error = %v\nstderr: %s", err, stderr)
	}

	// Two units, two SVG files.
	for _, name := range []string{"bench-1.svg", "bench-2.svg"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected chart %s: %v", name, err)
		}
		if !strings.Contains(stdout, "wrote "+path) {
			t.Errorf("stdout %q does not mention %s", stdout, path)
		}
	}
	if !strings.Contains(stderr, "run complete") {
		t.Errorf("stderr %q does not contain the run log", stderr)
	}
}

func TestRun_DefaultActionIsPlot(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)
	logFile := writeFile(t, dir, "bench.csv", benchLog)
	layoutFile := writeFile(t, dir, "layout.txt", "GPU Temp [°C]\n")

	_, stderr, err := runCLI(t, "", "--config", cfg, "-l", layoutFile, "-r", "none", logFile)
	if err != nil {
		t.Fatalf("run() error = %v\nstderr: %s", err, stderr)
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "bench*.svg")); len(matches) != 0 {
		t.Errorf("renderer none wrote %v", matches)
	}
}

func TestRun_ConfigFlagOnCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, true)
	logFile := writeFile(t, dir, "bench.csv", benchLog)
	layoutFile := writeFile(t, dir, "layout.txt", "GPU Temp [°C]\n")

	tests := []struct {
		name string
		args []string
	}{
		{"plot", []string{"plot", "--config", cfg, "-l", layoutFile, "-r", "none", logFile}},
		{"plot short alias", []string{"plot", "-c", cfg, "-l", layoutFile, "-r", "none", logFile}},
		{"families", []string{"families", "--config", cfg, logFile}},
		{"runs", []string{"runs", "--config", cfg}},
		{"layouts list", []string{"layouts", "list", "--config", cfg}},
		{"status", []string{"status", "--config", cfg}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, "", tt.args...)
			if err != nil {
				t.Fatalf("run(%v) error = %v\nstderr: %s", tt.args, err, stderr)
			}
			// Debug logging comes from the config file, so it was read.
			if !strings.Contains(stderr, "configuration loaded") {
				t.Errorf("stderr %q does not show the config file was loaded", stderr)
			}
		})
	}
}

func TestRun_FlagsAfterLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)
	logFile := writeFile(t, dir, "bench.csv", benchLog)

	tests := []struct {
		name string
		args []string
	}{
		{"default action", []string{"--config", cfg, "-r", "none", logFile, "--layout", "x"}},
		{"plot", []string{"--config", cfg, "plot", "-r", "none", logFile, "--layout", "x"}},
		{"two log files", []string{"--config", cfg, "plot", "-r", "none", logFile, logFile}},
		{"families", []string{"--config", cfg, "families", logFile, "--encoding", "utf-8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, "", tt.args...)
			if code := exitCode(err); err == nil || code != 2 {
				t.Fatalf("run(%v) error = %v (exit %d), want exit code 2", tt.args, err, code)
			}
			if !strings.Contains(err.Error(), "flags must come before it") {
				t.Errorf("error = %v, want a hint about flag order", err)
			}
		})
	}
}

func TestRun_InteractiveExport(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)
	logFile := writeFile(t, dir, "bench.csv", benchLog)
	exportFile := filepath.Join(dir, "picked.txt")

	// Family 0 (CPU), column 0, then finish.
	stdout, stderr, err := runCLI(t, "0\n0\n\n", "--config", cfg, "plot", "-e", exportFile, "-r", "none", logFile)
	if err != nil {
		t.Fatalf("run() error = %v\nstderr: %s", err, stderr)
	}
	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if string(data) != "CPU Temp [°C]\n" {
		t.Errorf("export = %q", data)
	}
	if !strings.Contains(stdout, "[0] CPU") {
		t.Errorf("prompt %q does not list families", stdout)
	}
}

func TestRun_Families(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)
	logFile := writeFile(t, dir, "bench.csv", benchLog)

	stdout, _, err := runCLI(t, "", "--config", cfg, "families", logFile)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := "[0] CPU\n      CPU Temp [°C]\n[1] GPU\n      GPU Temp [°C]\n"
	if stdout != want {
		t.Errorf("families output = %q, want %q", stdout, want)
	}
}

func TestRun_LayoutsRequireDatabase(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, false)

	_, _, err := runCLI(t, "", "--config", cfg, "layouts", "list")
	var coder cli.ExitCoder
	if !errors.As(err, &coder) || coder.ExitCode() != 2 {
		t.Errorf("error = %v, want exit code 2", err)
	}
}

func TestRun_LayoutLibraryAndHistory(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, dir, true)
	logFile := writeFile(t, dir, "bench.csv", benchLog)
	layoutFile := writeFile(t, dir, "layout.txt", "Load [%]\nCPU Temp [°C]\n")

	if _, stderr, err := runCLI(t, "", "--config", cfg, "layouts", "import", "bench", layoutFile); err != nil {
		t.Fatalf("import error = %v\nstderr: %s", err, stderr)
	}

	stdout, _, err := runCLI(t, "", "--config", cfg, "layouts", "show", "bench")
	if err != nil {
		t.Fatalf("show error = %v", err)
	}
	if stdout != "Load [%]\nCPU Temp [°C]\n" {
		t.Errorf("show output = %q", stdout)
	}

	if _, stderr, err := runCLI(t, "", "--config", cfg, "plot", "--layout-name", "bench", "-r", "none", logFile); err != nil {
		t.Fatalf("plot error = %v\nstderr: %s", err, stderr)
	}

	stdout, _, err = runCLI(t, "", "--config", cfg, "runs", "--json")
	if err != nil {
		t.Fatalf("runs error = %v", err)
	}
	var runs []struct {
		LogFile  string `json:"log_file"`
		Samples  int    `json:"samples"`
		Selected int    `json:"selected"`
	}
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("runs output %q: %v", stdout, err)
	}
	if len(runs) != 1 || runs[0].LogFile != logFile || runs[0].Samples != 2 || runs[0].Selected != 2 {
		t.Errorf("runs = %+v", runs)
	}

	exported := filepath.Join(dir, "out", "bench.txt")
	if _, _, err := runCLI(t, "", "--config", cfg, "layouts", "export", "bench", exported); err != nil {
		t.Fatalf("export error = %v", err)
	}
	if data, err := os.ReadFile(exported); err != nil || string(data) != "Load [%]\nCPU Temp [°C]\n" {
		t.Errorf("exported layout = %q, %v", data, err)
	}

	if _, _, err := runCLI(t, "", "--config", cfg, "layouts", "delete", "bench"); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	stdout, _, err = runCLI(t, "", "--config", cfg, "layouts", "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if strings.Contains(stdout, "bench") {
		t.Errorf("list after delete = %q", stdout)
	}
}

// statusConfig writes a config with the database enabled and the tsdb sink
// pointed at tsdbURL.
func statusConfig(t *testing.T, dir, tsdbURL string) string {
	t.Helper()
	path := testConfig(t, dir, true)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	extra := "tsdb:\n  enabled: true\n  url: \"" + tsdbURL + "\"\n"
	return writeFile(t, dir, "config.yaml", string(data)+extra)
}

// statusRows maps each component in the status table to its state.
func statusRows(t *testing.T, out string) map[string]string {
	t.Helper()
	rows := make(map[string]string)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "COMPONENT") {
		t.Fatalf("status output has no header: %q", out)
	}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			t.Fatalf("malformed status row %q", line)
		}
		rows[fields[0]] = fields[1]
	}
	return rows
}

func TestRun_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := statusConfig(t, dir, server.URL)

	stdout, stderr, err := runCLI(t, "", "status", "--config", cfg)
	if err != nil {
		t.Fatalf("status error = %v\nstderr: %s", err, stderr)
	}

	want := map[string]string{"database": "ok", "influxdb": "disabled", "tsdb": "ok", "mqtt": "disabled"}
	got := statusRows(t, stdout)
	for name, state := range want {
		if got[name] != state {
			t.Errorf("%s = %q, want %q\n%s", name, got[name], state, stdout)
		}
	}
	if !strings.Contains(stdout, filepath.Join(dir, "hwlog.db")) {
		t.Errorf("status %q does not show the database path", stdout)
	}
	if !strings.Contains(stdout, "hwlog/runs/+/summary") {
		t.Errorf("status %q does not show the summary topic", stdout)
	}
}

func TestRun_StatusUnhealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dir := t.TempDir()
	cfg := statusConfig(t, dir, server.URL)

	stdout, stderr, err := runCLI(t, "", "--config", cfg, "status")
	if code := exitCode(err); err == nil || code != 1 {
		t.Fatalf("status error = %v (exit %d), want exit code 1", err, code)
	}
	if got := statusRows(t, stdout); got["tsdb"] != "unhealthy" || got["database"] != "ok" {
		t.Errorf("rows = %v\n%s", got, stdout)
	}
	if !strings.Contains(stderr, "component unhealthy") {
		t.Errorf("stderr %q does not log the failure", stderr)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), 1},
		{"exit coder", cli.Exit("usage", 2), 2},
		{"wrapped exit coder", errors.Join(errors.New("ctx"), cli.Exit("x", 3)), 3},
		{"zero exit code", cli.Exit("x", 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
