package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nerrad567/hwlog/internal/history"
	"github.com/nerrad567/hwlog/internal/infrastructure/influxdb"
	"github.com/nerrad567/hwlog/internal/infrastructure/mqtt"
	"github.com/nerrad567/hwlog/internal/infrastructure/tsdb"
	"github.com/nerrad567/hwlog/internal/layout"
	"github.com/nerrad567/hwlog/internal/pipeline"
)

func plotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "layout", Aliases: []string{"l"}, Usage: "read the column selection from this layout file"},
		&cli.StringFlag{Name: "export", Aliases: []string{"e"}, Usage: "write the column selection to this layout file (ignored with --layout)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "strftime-style date/time format of the log (default from config: %d.%m.%Y %H:%M:%S)"},
		&cli.StringFlag{Name: "encoding", Usage: "text encoding of the log and layout files (default from config: iso-8859-1)"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "chart file (default: log file name with the renderer extension)"},
		&cli.StringFlag{Name: "renderer", Aliases: []string{"r"}, Usage: "png, html, svg or none (default from config)"},
		&cli.StringFlag{Name: "layout-name", Usage: "read the column selection from a named layout in the database"},
		&cli.StringFlag{Name: "save-as", Usage: "store the final column selection as a named layout"},
	}
}

func plotCommand() *cli.Command {
	return &cli.Command{
		Name:      "plot",
		Usage:     "ingest a sensor log and chart the selected columns",
		ArgsUsage: "LOGFILE",
		Flags:     plotFlags(),
		Action:    plotAction,
	}
}

func plotAction(c *cli.Context) error {
	logFile, err := onlyLogFile(c, "hwlog plot [options] LOGFILE")
	if err != nil {
		return err
	}

	e, err := setup(c)
	if err != nil {
		return err
	}
	e.log = e.log.With("log_file", logFile)
	cfg := e.cfg

	opts := pipeline.Options{
		LogFile:    logFile,
		DateFormat: pick(c.String("format"), cfg.Ingest.DateFormat),
		Encoding:   pick(c.String("encoding"), cfg.Ingest.Encoding),
		Layout:     c.String("layout"),
		Export:     c.String("export"),
		LayoutName: c.String("layout-name"),
		SaveAs:     c.String("save-as"),
		Renderer:   pick(c.String("renderer"), cfg.Render.Format),
		Output:     pick(c.String("output"), cfg.Render.Output),
		Width:      cfg.Render.Width,
		Height:     cfg.Render.Height,
		Input:      c.App.Reader,
		Prompt:     c.App.Writer,
	}

	var deps pipeline.Deps

	db, err := e.openDatabase(c)
	if err != nil {
		// The library and history are optional for plotting.
		e.log.Warn("database unavailable, layouts library and run history disabled", "error", err)
	}
	defer e.closeDatabase(db)
	if db != nil {
		deps.Library = layout.NewLibrary(db.DB)
		deps.History = history.NewRepository(db.DB)
	}

	closeSinks := connectSinks(c, e, &deps)
	defer closeSinks()

	res, err := pipeline.New(deps, e.log).Run(c.Context, opts)
	if err != nil {
		return err
	}

	for _, f := range res.Files {
		fmt.Fprintf(c.App.Writer, "wrote %s\n", f) //nolint:errcheck // Terminal output is best effort
	}
	e.log.Info("run complete",
		"run_id", res.RunID,
		"selected", len(res.Selection),
		"series", res.Grouping.SeriesCount(),
	)
	return nil
}

// connectSinks connects every enabled sink into deps. A sink that cannot be
// reached is logged and left out. The returned func closes what was opened.
func connectSinks(c *cli.Context, e *env, deps *pipeline.Deps) func() {
	var closers []func() error
	deps.Writers = make(map[string]pipeline.SeriesWriter)

	if influx, err := influxdb.Connect(c.Context, e.cfg.InfluxDB); err == nil {
		deps.Writers["influxdb"] = influx
		closers = append(closers, influx.Close)
	} else if !errors.Is(err, influxdb.ErrDisabled) {
		e.log.Warn("InfluxDB export disabled for this run", "error", err)
	}

	if vm, err := tsdb.Connect(c.Context, e.cfg.TSDB); err == nil {
		deps.Writers["tsdb"] = vm
		closers = append(closers, vm.Close)
	} else if !errors.Is(err, tsdb.ErrDisabled) {
		e.log.Warn("VictoriaMetrics export disabled for this run", "error", err)
	}

	if broker, err := mqtt.Connect(e.cfg.MQTT); err == nil {
		broker.SetLogger(e.log)
		deps.Summary = broker
		closers = append(closers, broker.Close)
	} else if !errors.Is(err, mqtt.ErrDisabled) {
		e.log.Warn("MQTT run summary disabled for this run", "error", err)
	}

	return func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				e.log.Error("error closing sink", "error", err)
			}
		}
	}
}

// pick returns flag when set, otherwise fallback.
func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}
