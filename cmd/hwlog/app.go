package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/nerrad567/hwlog/internal/infrastructure/config"
	"github.com/nerrad567/hwlog/internal/infrastructure/database"
	"github.com/nerrad567/hwlog/internal/infrastructure/logging"
	_ "github.com/nerrad567/hwlog/migrations"
)

// newApp builds the command tree. Running "hwlog LOGFILE" without a command
// is the same as "hwlog plot LOGFILE".
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "hwlog",
		Usage:     "plot HWiNFO sensor logs grouped by unit",
		UsageText: "hwlog [global options] LOGFILE\n   hwlog [global options] command [command options] [arguments...]",
		Version:   fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     append(globalFlags(), plotFlags()...),
		Action:    plotAction,
		Commands: withGlobalFlags([]*cli.Command{
			plotCommand(),
			familiesCommand(),
			layoutsCommand(),
			runsCommand(),
			statusCommand(),
		}),
		// Errors are returned to main, which owns the exit status.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
			EnvVars: []string{"HWLOG_CONFIG"},
		},
	}
}

// withGlobalFlags adds the global flags to every command and subcommand, so
// "hwlog plot --config FILE LOGFILE" works as well as
// "hwlog --config FILE plot LOGFILE".
func withGlobalFlags(cmds []*cli.Command) []*cli.Command {
	for _, cmd := range cmds {
		cmd.Flags = append(cmd.Flags, globalFlags()...)
		withGlobalFlags(cmd.Subcommands)
	}
	return cmds
}

// configPath returns the innermost --config value. The flag is defined at
// every level, so c.String alone would stop at the first, possibly empty,
// definition.
func configPath(c *cli.Context) string {
	for _, ctx := range c.Lineage() {
		if path := ctx.String("config"); path != "" {
			return path
		}
	}
	return ""
}

// onlyLogFile returns the single LOGFILE argument. Flags after LOGFILE are
// not parsed, so any extra argument is rejected rather than ignored.
func onlyLogFile(c *cli.Context, usage string) (string, error) {
	switch c.Args().Len() {
	case 0:
		return "", cli.Exit(fmt.Sprintf("a log file is required (%s)", usage), 2)
	case 1:
		return c.Args().First(), nil
	default:
		return "", cli.Exit(fmt.Sprintf("unexpected arguments after LOGFILE %v; flags must come before it (%s)",
			c.Args().Tail(), usage), 2)
	}
}

// env holds what every command needs after startup.
type env struct {
	cfg *config.Config
	log *logging.Logger
}

// setup loads configuration and builds the logger.
func setup(c *cli.Context) (*env, error) {
	path := configPath(c)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version, c.App.Writer, c.App.ErrWriter)
	log.Debug("configuration loaded", "path", path)

	return &env{cfg: cfg, log: log}, nil
}

// openDatabase opens and migrates the SQLite database. It returns nil when
// the database is disabled.
func (e *env) openDatabase(c *cli.Context) (*database.DB, error) {
	if !e.cfg.Database.Enabled {
		return nil, nil
	}
	db, err := database.OpenMigrated(c.Context, database.Config{
		Path:        e.cfg.Database.Path,
		WALMode:     e.cfg.Database.WALMode,
		BusyTimeout: e.cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	e.log.Debug("database opened", "path", e.cfg.Database.Path)
	return db, nil
}

// requireDatabase is openDatabase for commands that cannot work without it.
func (e *env) requireDatabase(c *cli.Context) (*database.DB, error) {
	db, err := e.openDatabase(c)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return nil, cli.Exit("the database is disabled; set database.enabled in the config file", 2)
	}
	return db, nil
}

// closeDatabase closes db, logging failures.
func (e *env) closeDatabase(db *database.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		e.log.Error("error closing database", "error", err)
	}
}
