// Package migrations embeds the SQL schema for the sqlite watermark backend.
package migrations

import (
	"embed"

	"github.com/nerrad567/gruenbeck-collector/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
