package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"fixie/internal/core"
	"fixie/internal/loader"
)

func loadCmd(flags *globalFlags, dryRun bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [tables...]",
		Short: "Load fixture files into the database",
		Long: `Load inserts the records of every fixture file, or only those of the named
tables. Referenced tables are loaded first. A record that cannot be inserted is
reported and does not stop the load; the command then exits with an error.`,
	}
	if dryRun {
		cmd.Use = "plan [tables...]"
		cmd.Short = "Print the statements a load would run without running them"
		cmd.Long = `Plan resolves every fixture record against the live schema and prints the
INSERT statements a load would execute. Nothing is written to the database.`
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := flags.open(ctx, cmd, dryRun)
		if err != nil {
			return err
		}
		defer a.Close()

		results, loadErr := a.session.Up(ctx, args...)

		out, err := a.formatter.FormatResults(results)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)

		if loadErr != nil {
			return loadErr
		}
		if failed := len(a.session.Failures()); failed > 0 {
			return fmt.Errorf("%d records failed to load", failed)
		}
		return nil
	}
	return cmd
}

func truncateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "truncate [tables...]",
		Short: "Empty the named tables, or every table with a fixture file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := flags.open(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			tables, err := tablesOrFixtures(a.cfg.Fixtures, args)
			if err != nil {
				return err
			}
			if len(tables) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tables to truncate.")
				return nil
			}

			if err := a.driver.TruncateTables(ctx, tables...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d tables\n", color.GreenString("Truncated"), len(tables))
			return nil
		},
	}
}

func inspectCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [tables...]",
		Short: "Show the primary and foreign keys fixie detects for tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := flags.open(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			tables, err := tablesOrFixtures(a.cfg.Fixtures, args)
			if err != nil {
				return err
			}

			server, err := a.driver.Describe(ctx)
			if err != nil {
				return err
			}

			keys := make([]*core.TableKeys, 0, len(tables))
			for _, table := range tables {
				k, err := a.driver.TableKeys(ctx, table)
				if err != nil {
					return err
				}
				keys = append(keys, k)
			}

			out, err := a.formatter.FormatKeys(server, keys)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// tablesOrFixtures returns args, or the tables of the fixture files in dir.
func tablesOrFixtures(dir string, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	fixtures, err := loader.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	tables := make([]string, 0, len(fixtures))
	for _, f := range fixtures {
		tables = append(tables, f.Table)
	}
	return tables, nil
}
