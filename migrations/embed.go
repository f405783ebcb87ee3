// Package migrations embeds the gateway's SQL schema, applied at startup by
// database.Pool.Migrate.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
