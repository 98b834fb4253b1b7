// Package migrations embeds the SQL migration files for the shell's
// SQLite store.
package migrations

import "embed"

// FS holds the embedded migration files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
