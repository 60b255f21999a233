package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nerrad567/hwlog/internal/infrastructure/influxdb"
	"github.com/nerrad567/hwlog/internal/infrastructure/mqtt"
	"github.com/nerrad567/hwlog/internal/infrastructure/tsdb"
)

const (
	stateOK       = "ok"
	stateDisabled = "disabled"
	stateFailed   = "unhealthy"
)

// componentStatus is one row of the status table.
type componentStatus struct {
	name   string
	state  string
	detail string
	err    error
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "check the database and every enabled export sink",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "timeout", Usage: "give up on the checks after this long", Value: 10 * time.Second},
		},
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	rows := []componentStatus{
		databaseStatus(ctx, c, e),
		influxStatus(ctx, e),
		tsdbStatus(ctx, e),
		mqttStatus(ctx, e),
	}

	failed := 0
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPONENT\tSTATUS\tDETAIL") //nolint:errcheck // Terminal output is best effort
	for _, r := range rows {
		detail := r.detail
		if r.err != nil {
			failed++
			detail = fmt.Sprintf("%s: %v", r.detail, r.err)
			e.log.Warn("component unhealthy", "component", r.name, "error", r.err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.name, r.state, detail) //nolint:errcheck // Terminal output is best effort
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d components unhealthy", failed, len(rows)), 1)
	}
	return nil
}

// checked builds a row from the outcome of a health check.
func checked(name, detail string, err error) componentStatus {
	if err != nil {
		return componentStatus{name: name, state: stateFailed, detail: detail, err: err}
	}
	return componentStatus{name: name, state: stateOK, detail: detail}
}

func disabled(name, detail string) componentStatus {
	return componentStatus{name: name, state: stateDisabled, detail: detail}
}

func databaseStatus(ctx context.Context, c *cli.Context, e *env) componentStatus {
	if !e.cfg.Database.Enabled {
		return disabled("database", e.cfg.Database.Path)
	}
	db, err := e.openDatabase(c)
	if err != nil {
		return checked("database", e.cfg.Database.Path, err)
	}
	defer e.closeDatabase(db)

	return checked("database", db.Path(), db.HealthCheck(ctx))
}

func influxStatus(ctx context.Context, e *env) componentStatus {
	url := e.cfg.InfluxDB.URL
	client, err := influxdb.Connect(ctx, e.cfg.InfluxDB)
	if errors.Is(err, influxdb.ErrDisabled) {
		return disabled("influxdb", url)
	}
	if err != nil {
		return checked("influxdb", url, err)
	}
	defer client.Close() //nolint:errcheck // Nothing was written

	return checked("influxdb", url, client.HealthCheck(ctx))
}

func tsdbStatus(ctx context.Context, e *env) componentStatus {
	url := e.cfg.TSDB.URL
	client, err := tsdb.Connect(ctx, e.cfg.TSDB)
	if errors.Is(err, tsdb.ErrDisabled) {
		return disabled("tsdb", url)
	}
	if err != nil {
		return checked("tsdb", url, err)
	}
	defer client.Close() //nolint:errcheck // Nothing was written

	return checked("tsdb", url, client.HealthCheck(ctx))
}

func mqttStatus(ctx context.Context, e *env) componentStatus {
	broker := e.cfg.MQTT.Broker
	detail := fmt.Sprintf("%s:%d, summaries on %s", broker.Host, broker.Port, mqtt.Topics{}.AllRunSummaries())

	client, err := mqtt.Connect(e.cfg.MQTT)
	if errors.Is(err, mqtt.ErrDisabled) {
		return disabled("mqtt", detail)
	}
	if err != nil {
		return checked("mqtt", detail, err)
	}
	client.SetLogger(e.log)
	defer client.Close() //nolint:errcheck // Close never fails

	return checked("mqtt", detail, client.HealthCheck(ctx))
}
