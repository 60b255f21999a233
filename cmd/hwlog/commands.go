package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/nerrad567/hwlog/internal/history"
	"github.com/nerrad567/hwlog/internal/layout"
	"github.com/nerrad567/hwlog/internal/sensorlog"
)

func familiesCommand() *cli.Command {
	return &cli.Command{
		Name:      "families",
		Usage:     "list the device families of a sensor log and their columns",
		ArgsUsage: "LOGFILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "encoding", Usage: "text encoding of the log (default from config)"},
		},
		Action: func(c *cli.Context) error {
			logFile, err := onlyLogFile(c, "hwlog families [options] LOGFILE")
			if err != nil {
				return err
			}
			e, err := setup(c)
			if err != nil {
				return err
			}

			enc, err := sensorlog.LookupEncoding(pick(c.String("encoding"), e.cfg.Ingest.Encoding))
			if err != nil {
				return err
			}
			table, err := sensorlog.ReadTableFile(logFile, enc)
			if err != nil {
				return err
			}
			index := sensorlog.BuildFamilyIndex(table)

			out := c.App.Writer
			for i, family := range index.Families() {
				fmt.Fprintf(out, "[%d] %s\n", i, family) //nolint:errcheck // Terminal output is best effort
				for _, column := range index.ColumnsOf(family) {
					fmt.Fprintf(out, "      %s\n", column) //nolint:errcheck // Terminal output is best effort
				}
			}
			e.log.Debug("families listed", "families", len(index.Families()), "columns", index.Len())
			return nil
		},
	}
}

func layoutsCommand() *cli.Command {
	return &cli.Command{
		Name:  "layouts",
		Usage: "manage named layouts stored in the database",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list named layouts",
				Action: withLibrary(func(c *cli.Context, lib *layout.Library, _ *env) error {
					infos, err := lib.List(c.Context)
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
					fmt.Fprintln(tw, "NAME\tCOLUMNS\tUPDATED") //nolint:errcheck // Terminal output is best effort
					for _, info := range infos {
						fmt.Fprintf(tw, "%s\t%d\t%s\n", info.Name, info.Columns, info.UpdatedAt.Local().Format(time.DateTime)) //nolint:errcheck // Terminal output is best effort
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "show",
				Usage:     "print the columns of a named layout",
				ArgsUsage: "NAME",
				Action: withLibrary(func(c *cli.Context, lib *layout.Library, _ *env) error {
					sel, err := lib.Load(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					for _, column := range sel {
						fmt.Fprintln(c.App.Writer, column) //nolint:errcheck // Terminal output is best effort
					}
					return nil
				}),
			},
			{
				Name:      "import",
				Usage:     "store a layout file under a name",
				ArgsUsage: "NAME FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "encoding", Usage: "text encoding of the layout file (default from config)"},
				},
				Action: withLibrary(func(c *cli.Context, lib *layout.Library, e *env) error {
					name, path := c.Args().Get(0), c.Args().Get(1)
					if path == "" {
						return cli.Exit("usage: hwlog layouts import NAME FILE", 2)
					}
					store, err := fileStore(c, e)
					if err != nil {
						return err
					}
					sel, err := store.Load(path)
					if err != nil {
						return err
					}
					if err := lib.Save(c.Context, name, sel); err != nil {
						return err
					}
					e.log.Info("layout imported", "name", name, "file", path, "columns", len(sel))
					return nil
				}),
			},
			{
				Name:      "export",
				Usage:     "write a named layout to a layout file",
				ArgsUsage: "NAME FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "encoding", Usage: "text encoding of the layout file (default from config)"},
				},
				Action: withLibrary(func(c *cli.Context, lib *layout.Library, e *env) error {
					name, path := c.Args().Get(0), c.Args().Get(1)
					if path == "" {
						return cli.Exit("usage: hwlog layouts export NAME FILE", 2)
					}
					sel, err := lib.Load(c.Context, name)
					if err != nil {
						return err
					}
					store, err := fileStore(c, e)
					if err != nil {
						return err
					}
					if err := store.Save(path, sel); err != nil {
						return err
					}
					e.log.Info("layout exported", "name", name, "file", path, "columns", len(sel))
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "remove a named layout",
				ArgsUsage: "NAME",
				Action: withLibrary(func(c *cli.Context, lib *layout.Library, e *env) error {
					name := c.Args().First()
					if err := lib.Delete(c.Context, name); err != nil {
						return err
					}
					e.log.Info("layout deleted", "name", name)
					return nil
				}),
			},
		},
	}
}

// withLibrary opens the database for a layouts subcommand.
func withLibrary(fn func(*cli.Context, *layout.Library, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := setup(c)
		if err != nil {
			return err
		}
		db, err := e.requireDatabase(c)
		if err != nil {
			return err
		}
		defer e.closeDatabase(db)

		return fn(c, layout.NewLibrary(db.DB), e)
	}
}

func fileStore(c *cli.Context, e *env) (*layout.FileStore, error) {
	enc, err := sensorlog.LookupEncoding(pick(c.String("encoding"), e.cfg.Ingest.Encoding))
	if err != nil {
		return nil, err
	}
	return layout.NewFileStore(enc), nil
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "show recent runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "number of runs to show", Value: 20},
			&cli.BoolFlag{Name: "json", Usage: "print runs as JSON"},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c)
			if err != nil {
				return err
			}
			db, err := e.requireDatabase(c)
			if err != nil {
				return err
			}
			defer e.closeDatabase(db)

			runs, err := history.NewRepository(db.DB).List(c.Context, c.Int("limit"))
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tLOG\tSTARTED\tSAMPLES\tSELECTED") //nolint:errcheck // Terminal output is best effort
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", //nolint:errcheck // Terminal output is best effort
					r.ID, r.LogFile, r.StartedAt.Format(time.DateTime), r.Samples, r.Selected)
			}
			return tw.Flush()
		},
	}
}
