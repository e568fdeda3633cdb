package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/tabula/cache"
	"github.com/syssam/tabula/dialect/sql"
	"github.com/syssam/tabula/internal/config"
	"github.com/syssam/tabula/internal/movies"
	"github.com/syssam/tabula/repository"
)

// Version is set at build time.
var Version = "dev"

// app holds what the subcommands share. It is filled before a subcommand runs.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sql.Driver
	stats   *sql.StatsDriver
	catalog *movies.Catalog
}

// execute runs the command line args and releases the database afterwards.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return errors.Join(root.ExecuteContext(ctx), a.close())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "tabula",
		Short: "Manage the movie catalog",
		Long: `tabula reads and writes the movie catalog: movies, users and their
favorite movies. Connection, table names and logging come from tabula.yaml,
TABULA_ environment variables and flags.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.open(cmd)
		},
	}
	config.Flags(root.PersistentFlags())
	_ = root.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.Outputs, cobra.ShellCompDirectiveNoFileComp
	})
	root.AddCommand(
		newMoviesCmd(a),
		newUsersCmd(a),
		newFavoritesCmd(a),
	)
	return root
}

// open loads the configuration and connects the catalog.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := cfg.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if cfg.File != "" {
		log.Debug("using config file", "file", cfg.File)
	}
	db, err := sql.Open(cfg.Database.Dialect, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	stats := sql.NewStatsDriver(db,
		sql.WithSlowThreshold(cfg.Stats.SlowThreshold),
		sql.WithSlowQueryLog(log),
	)
	var drv repository.Driver = stats
	if cfg.Debug {
		drv = sql.NewDebugDriver(stats, sql.DebugWithLogger(log))
	}
	var opts []repository.Option
	if cfg.Cache.Size > 0 {
		opts = append(opts, repository.WithCache(cache.New(cfg.Cache.Size, cfg.Cache.TTL), cfg.Cache.TTL))
	}
	catalog, err := movies.New(drv, movies.Tables{
		Movies:    cfg.Tables.Movies,
		Users:     cfg.Tables.Users,
		Favorites: cfg.Tables.Favorites,
	}, log, opts...)
	if err != nil {
		return errors.Join(err, db.Close())
	}
	*a = app{cfg: cfg, log: log, db: db, stats: stats, catalog: catalog}
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	a.log.Debug("query stats", "stats", a.stats.QueryStats().Stats().String())
	err := a.db.Close()
	a.db = nil
	return err
}
