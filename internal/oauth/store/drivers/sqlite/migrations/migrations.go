// Package migrations embeds the SQL migration files applied by the sqlite
// driver, so the compiled binary carries its own schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
