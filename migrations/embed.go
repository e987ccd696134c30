// Package migrations embeds the postgres schema.
package migrations

import "embed"

// FS holds the *.up.sql files applied by database.RunMigrations.
//
//go:embed *.up.sql
var FS embed.FS
