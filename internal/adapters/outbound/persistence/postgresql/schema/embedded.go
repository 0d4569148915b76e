package schema

import "embed"

// Baseline revisions used when no migrations directory is configured.
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const embeddedMigrationsDir = "migrations"
