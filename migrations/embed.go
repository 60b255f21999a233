// Package migrations embeds SQL migration files into the binary.
//
// Importing this package registers the layout library and run history
// schema with the database package, so hwlog can migrate without the SQL
// files present on disk.
package migrations

import (
	"embed"

	"github.com/nerrad567/hwlog/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
