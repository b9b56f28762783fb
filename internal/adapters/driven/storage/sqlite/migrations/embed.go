// Package migrations embeds the schema migration files applied by the
// SQLite store on open.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
