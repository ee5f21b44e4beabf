package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"novelhub-backend/internal/config"
	"novelhub-backend/internal/infrastructure/database"
	"novelhub-backend/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back embedded SQL migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(mg *database.Migrator) error {
			if err := mg.Up(); err != nil {
				return err
			}
			color.New(color.FgHiGreen, color.Bold).Println("✅ Migrations applied")
			return printVersion(mg)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back the given number of migrations (default 1)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}

		return withMigrator(func(mg *database.Migrator) error {
			if err := mg.Down(steps); err != nil {
				return err
			}
			color.New(color.FgHiYellow, color.Bold).Printf("↩️  Rolled back %d migration(s)\n", steps)
			return printVersion(mg)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(printVersion)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func withMigrator(fn func(mg *database.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	mg, err := database.NewMigrator(migrations.FS, cfg.Database.URL())
	if err != nil {
		return err
	}
	defer mg.Close()

	return fn(mg)
}

func printVersion(mg *database.Migrator) error {
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		fmt.Println("schema version: none (no migrations applied)")
		return nil
	}

	state := color.GreenString("clean")
	if dirty {
		state = color.RedString("dirty")
	}
	fmt.Printf("schema version: %d (%s)\n", version, state)
	return nil
}
