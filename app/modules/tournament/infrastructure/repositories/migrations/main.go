package tournamentmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the tournament schema migrations.
var Migrations = migrate.NewMigrations()
