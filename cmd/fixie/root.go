package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixie/internal/config"
	"fixie/internal/database"
	"fixie/internal/driver"
	"fixie/internal/fixture"
	"fixie/internal/output"
)

type globalFlags struct {
	config       string
	dsn          string
	dialect      string
	fixtures     string
	format       string
	keyDetection string
	noColor      bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "fixie",
		Short: "Load named test fixtures into a relational database",
		Long: `fixie seeds a database with fixture records read from TOML or YAML files.
Primary and foreign keys are generated from record names, so fixtures refer to
each other by name instead of by hard-coded ids.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.config, "config", "", "config file (default is ./fixie.toml)")
	pf.StringVar(&flags.dsn, "dsn", "", "database DSN (overrides config and the dsn_env variable)")
	pf.StringVar(&flags.dialect, "dialect", "", "database dialect: mysql, mariadb, tidb, postgresql, sqlite")
	pf.StringVar(&flags.fixtures, "fixtures", "", "fixtures directory")
	pf.StringVar(&flags.format, "format", "", "output format: human, json, sql, summary")
	pf.StringVar(&flags.keyDetection, "key-detection", "", "foreign key detection: auto (constraints, else non-unique indexes), constraints, index")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(loadCmd(flags, false))
	rootCmd.AddCommand(loadCmd(flags, true))
	rootCmd.AddCommand(truncateCmd(flags))
	rootCmd.AddCommand(inspectCmd(flags))

	return rootCmd
}

// resolve loads the configuration and applies the flags the user set.
func (g *globalFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(g.config)
	if err != nil {
		return nil, err
	}

	set := cmd.Flags().Changed
	if set("dsn") {
		cfg.DSN = g.dsn
	}
	if set("dialect") {
		cfg.Dialect = g.dialect
	}
	if set("fixtures") {
		cfg.Fixtures = g.fixtures
	}
	if set("format") {
		cfg.Format = g.format
	}
	if set("key-detection") {
		cfg.KeyDetection = g.keyDetection
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// app is everything a command needs to talk to the database.
type app struct {
	cfg       *config.Config
	db        *sql.DB
	driver    *driver.Driver
	session   *fixture.Session
	formatter output.Formatter
}

func (g *globalFlags) open(ctx context.Context, cmd *cobra.Command, dryRun bool) (*app, error) {
	cfg, err := g.resolve(cmd)
	if err != nil {
		return nil, err
	}

	d, _ := cfg.DatabaseDialect()
	mode, _ := cfg.Detection()
	dsn, _ := cfg.DatabaseURL()
	formatter, _ := output.NewFormatter(cfg.Format)

	db, err := database.Open(ctx, d, dsn)
	if err != nil {
		return nil, err
	}

	drv, err := driver.New(db, d, driver.Options{
		KeyDetection: mode,
		DryRun:       dryRun,
		Out:          cmd.ErrOrStderr(),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		db:     db,
		driver: drv,
		session: fixture.NewSession(drv, fixture.Options{
			Location: cfg.Fixtures,
			Out:      cmd.ErrOrStderr(),
		}),
		formatter: formatter,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
