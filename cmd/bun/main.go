package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	tournamentmigrations "github.com/Black-And-White-Club/tourney-bot/app/modules/tournament/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/tourney-bot/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	migrators := map[string]*migrate.Migrator{
		"tournament": migrate.NewMigrator(db, tournamentmigrations.Migrations),
	}

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(migrators),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

// eachModule runs fn for every migrator in name order.
func eachModule(migrators map[string]*migrate.Migrator, fn func(name string, m *migrate.Migrator) error) error {
	for _, name := range slices.Sorted(maps.Keys(migrators)) {
		if err := fn(name, migrators[name]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func pick(migrators map[string]*migrate.Migrator, c *cli.Context) (string, *migrate.Migrator, error) {
	name := c.Args().First()
	m, ok := migrators[name]
	if !ok {
		return "", nil, fmt.Errorf("invalid module name: %q", name)
	}
	return name, m, nil
}

func newMultiModuleDBCommand(migrators map[string]*migrate.Migrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return eachModule(migrators, func(name string, m *migrate.Migrator) error {
						fmt.Printf("Initializing migrations for module: %s\n", name)
						return m.Init(c.Context)
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					return eachModule(migrators, func(name string, m *migrate.Migrator) error {
						if err := m.Lock(c.Context); err != nil {
							return err
						}
						defer m.Unlock(c.Context) //nolint:errcheck

						group, err := m.Migrate(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", name)
						} else {
							fmt.Printf("Migrated module %s to %s\n", name, group)
						}
						return nil
					})
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group",
				Action: func(c *cli.Context) error {
					return eachModule(migrators, func(name string, m *migrate.Migrator) error {
						group, err := m.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", name)
						} else {
							fmt.Printf("Rolled back module %s from %s\n", name, group)
						}
						return nil
					})
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					name, m, err := pick(migrators, c)
					if err != nil {
						return err
					}
					mf, err := m.CreateGoMigration(c.Context, strings.Join(c.Args().Tail(), "_"))
					if err != nil {
						return err
					}
					fmt.Printf("Created migration for module %s: %s (%s)\n", name, mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					return eachModule(migrators, func(name string, m *migrate.Migrator) error {
						ms, err := m.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Module %s\n  applied: %s\n  unapplied: %s\n", name, ms.Applied(), ms.Unapplied())
						return nil
					})
				},
			},
		},
	}
}
