package mqtt

import (
	"math"
	"time"

	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// RunSummary is the JSON document published after each plotting run.
type RunSummary struct {
	RunID     string          `json:"run_id"`
	LogFile   string          `json:"log_file"`
	StartedAt time.Time       `json:"started_at"`
	Samples   int             `json:"samples"`
	Duration  int64           `json:"duration_seconds"`
	Series    []SeriesSummary `json:"series"`
}

// SeriesSummary describes one rendered series. Min, Max and Mean are null
// when the series has no valid samples. KnownDevice is false when the column
// matched no device family.
type SeriesSummary struct {
	Column      string   `json:"column"`
	Device      string   `json:"device"`
	KnownDevice bool     `json:"known_device"`
	Unit        string   `json:"unit"`
	Count       int      `json:"count"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Mean        *float64 `json:"mean"`
}

// NewRunSummary summarises g for publication.
func NewRunSummary(runID, logFile string, g *sensorlog.Grouping) RunSummary {
	s := RunSummary{
		RunID:     runID,
		LogFile:   logFile,
		StartedAt: g.Start,
		Samples:   len(g.Axis),
		Series:    make([]SeriesSummary, 0, g.SeriesCount()),
	}
	if n := len(g.Axis); n > 0 {
		s.Duration = g.Axis[n-1]
	}

	for _, group := range g.Groups {
		for _, ts := range group.Series {
			stats := ts.Summary()
			s.Series = append(s.Series, SeriesSummary{
				Column:      ts.Column,
				Device:      ts.Device,
				KnownDevice: ts.KnownDevice,
				Unit:        ts.Unit,
				Count:       stats.Count,
				Min:         finite(stats.Min),
				Max:         finite(stats.Max),
				Mean:        finite(stats.Mean),
			})
		}
	}
	return s
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
