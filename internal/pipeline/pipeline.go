package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"

	"github.com/nerrad567/hwlog/internal/history"
	"github.com/nerrad567/hwlog/internal/infrastructure/mqtt"
	"github.com/nerrad567/hwlog/internal/layout"
	"github.com/nerrad567/hwlog/internal/render"
	"github.com/nerrad567/hwlog/internal/selector"
	"github.com/nerrad567/hwlog/internal/sensorlog"
)

// RendererNone disables chart output.
const RendererNone = "none"

// Logger defines the logging interface used by the pipeline.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// LayoutLibrary stores named selections.
type LayoutLibrary interface {
	Load(ctx context.Context, name string) (sensorlog.Selection, error)
	Save(ctx context.Context, name string, sel sensorlog.Selection) error
}

// RunRecorder persists run history.
type RunRecorder interface {
	Record(ctx context.Context, run history.Run) error
}

// SeriesWriter exports grouped series to a time-series store.
type SeriesWriter interface {
	WriteGrouping(ctx context.Context, g *sensorlog.Grouping, runID string) (int, error)
}

// SummaryPublisher publishes the run summary.
type SummaryPublisher interface {
	PublishRunSummary(s mqtt.RunSummary) error
}

// Deps are the optional collaborators of a run. Nil members are skipped.
type Deps struct {
	Library LayoutLibrary
	History RunRecorder

	// Writers are keyed by sink name ("influxdb", "tsdb") for logging.
	Writers map[string]SeriesWriter

	Summary SummaryPublisher
}

// Options describe a single run.
type Options struct {
	// LogFile is the sensor log to plot. Required.
	LogFile string

	// DateFormat is the strftime-style pattern of the Date and Time cells.
	DateFormat string

	// Encoding is the IANA name of the text encoding of logs and layouts.
	Encoding string

	// Layout is a layout file to read the selection from.
	Layout string

	// Export is a layout file to write the final selection to. Ignored when
	// Layout is set.
	Export string

	// LayoutName selects a named layout from the library.
	LayoutName string

	// SaveAs stores the final selection in the library under this name.
	SaveAs string

	// Renderer is "png", "html", "svg" or RendererNone.
	Renderer string

	// Output is the chart path; empty derives it from LogFile.
	Output string

	// Width and Height are chart dimensions in pixels; zero uses defaults.
	Width  int
	Height int

	// RunID identifies the run; empty generates a UUID.
	RunID string

	// Input and Prompt carry the interactive selector dialogue.
	// Nil defaults to os.Stdin and os.Stdout.
	Input  io.Reader
	Prompt io.Writer
}

// Result summarises a completed run.
type Result struct {
	RunID     string
	Samples   int
	Columns   int
	Families  int
	Selection sensorlog.Selection
	Grouping  *sensorlog.Grouping

	// Files are the chart files written, primary artifact first.
	Files []string

	// Exported counts the points accepted per sink name.
	Exported map[string]int
}

// Pipeline runs plotting jobs against a fixed set of collaborators.
type Pipeline struct {
	deps   Deps
	logger Logger
}

// New creates a Pipeline. A nil logger discards diagnostics.
func New(deps Deps, logger Logger) *Pipeline {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Pipeline{deps: deps, logger: logger}
}

// Run executes one plotting run.
//
// Parameters:
//   - ctx: Context for cancellation of prompts and sink exports
//   - opts: Run options
//
// Returns:
//   - *Result: What was ingested, selected, rendered and exported
//   - error: Fatal failures only (see package documentation)
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := p.logger

	enc, err := sensorlog.LookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	table, err := sensorlog.ReadTableFile(opts.LogFile, enc)
	if err != nil {
		return nil, err
	}

	ds, index, err := sensorlog.Ingest(table, opts.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", opts.LogFile, err)
	}
	log.Info("log ingested",
		"file", opts.LogFile,
		"samples", ds.Len(),
		"columns", len(ds.Columns),
		"families", len(index.Families()),
		"start", ds.Start.Format(time.DateTime),
	)

	sel, err := p.selection(ctx, opts, enc, index)
	if err != nil {
		return nil, err
	}
	p.export(ctx, opts, enc, sel)

	g, err := sensorlog.GroupByUnit(ds, index, sel, log)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     runID,
		Samples:   ds.Len(),
		Columns:   len(ds.Columns),
		Families:  len(index.Families()),
		Selection: sel,
		Grouping:  g,
		Exported:  make(map[string]int),
	}

	files, err := p.render(opts, g)
	if err != nil {
		return nil, err
	}
	res.Files = files

	p.exportSeries(ctx, opts, res)
	p.record(ctx, opts, res, ds.Start)

	return res, nil
}

// selection resolves the run's column selection. A layout file or named
// layout that cannot be read degrades to an empty selection.
func (p *Pipeline) selection(ctx context.Context, opts Options, enc encoding.Encoding, index *sensorlog.FamilyIndex) (sensorlog.Selection, error) {
	switch {
	case opts.Layout != "":
		sel, err := layout.NewFileStore(enc).Load(opts.Layout)
		if err != nil {
			p.logger.Warn("layout file unavailable, continuing with empty selection",
				"path", opts.Layout, "error", err)
			return sensorlog.Selection{}, nil
		}
		p.logger.Info("layout loaded", "path", opts.Layout, "columns", len(sel))
		return sel, nil

	case opts.LayoutName != "":
		if p.deps.Library == nil {
			p.logger.Warn("layout library disabled, continuing with empty selection", "layout", opts.LayoutName)
			return sensorlog.Selection{}, nil
		}
		sel, err := p.deps.Library.Load(ctx, opts.LayoutName)
		if err != nil {
			p.logger.Warn("named layout unavailable, continuing with empty selection",
				"layout", opts.LayoutName, "error", err)
			return sensorlog.Selection{}, nil
		}
		p.logger.Info("named layout loaded", "layout", opts.LayoutName, "columns", len(sel))
		return sel, nil
	}

	in, out := opts.Input, opts.Prompt
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	s := selector.New(in, out)
	s.SetLogger(p.logger)

	sel, err := s.Run(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("selecting columns: %w", err)
	}
	return sel, nil
}

// export writes the selection to the export file and the library.
func (p *Pipeline) export(ctx context.Context, opts Options, enc encoding.Encoding, sel sensorlog.Selection) {
	if opts.Export != "" && opts.Layout == "" {
		if err := layout.NewFileStore(enc).Save(opts.Export, sel); err != nil {
			p.logger.Warn("layout export skipped", "path", opts.Export, "error", err)
		} else {
			p.logger.Info("layout exported", "path", opts.Export, "columns", len(sel))
		}
	}

	if opts.SaveAs == "" {
		return
	}
	if p.deps.Library == nil {
		p.logger.Warn("layout library disabled, not saving layout", "layout", opts.SaveAs)
		return
	}
	if err := p.deps.Library.Save(ctx, opts.SaveAs, sel); err != nil {
		p.logger.Warn("saving named layout failed", "layout", opts.SaveAs, "error", err)
		return
	}
	p.logger.Info("named layout saved", "layout", opts.SaveAs, "columns", len(sel))
}

// render draws g unless rendering is disabled or nothing was selected.
func (p *Pipeline) render(opts Options, g *sensorlog.Grouping) ([]string, error) {
	format := strings.ToLower(strings.TrimSpace(opts.Renderer))
	if format == "" {
		format = render.FormatPNG
	}
	if format == RendererNone {
		p.logger.Debug("rendering disabled")
		return nil, nil
	}

	r, err := render.New(format, render.Options{Width: opts.Width, Height: opts.Height}, p.logger)
	if err != nil {
		return nil, err
	}

	if len(g.Groups) == 0 {
		p.logger.Warn("no columns selected, no chart written")
		return nil, nil
	}

	output := opts.Output
	if output == "" {
		output = render.OutputPath(opts.LogFile, r.Extension())
	}

	files, err := r.Render(g, output)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", output, err)
	}
	p.logger.Info("chart written", "files", files, "groups", len(g.Groups), "series", g.SeriesCount())
	return files, nil
}

// exportSeries hands the grouping to every configured sink.
func (p *Pipeline) exportSeries(ctx context.Context, opts Options, res *Result) {
	g := res.Grouping
	if g.SeriesCount() == 0 {
		return
	}

	for name, w := range p.deps.Writers {
		if w == nil {
			continue
		}
		n, err := w.WriteGrouping(ctx, g, res.RunID)
		res.Exported[name] = n
		if err != nil {
			p.logger.Warn("series export failed", "sink", name, "written", n, "error", err)
			continue
		}
		p.logger.Info("series exported", "sink", name, "points", n)
	}

	if p.deps.Summary != nil {
		summary := mqtt.NewRunSummary(res.RunID, opts.LogFile, g)
		if err := p.deps.Summary.PublishRunSummary(summary); err != nil {
			p.logger.Warn("run summary not published", "error", err)
		} else {
			p.logger.Info("run summary published", "topic", mqtt.Topics{}.RunSummary(res.RunID))
		}
	}
}

// record stores the run in history.
func (p *Pipeline) record(ctx context.Context, opts Options, res *Result, start time.Time) {
	if p.deps.History == nil {
		return
	}
	err := p.deps.History.Record(ctx, history.Run{
		ID:        res.RunID,
		LogFile:   opts.LogFile,
		StartedAt: start,
		Samples:   res.Samples,
		Columns:   res.Columns,
		Families:  res.Families,
		Selected:  len(res.Selection),
	})
	if err != nil {
		p.logger.Warn("run history not recorded", "run_id", res.RunID, "error", err)
	}
}
