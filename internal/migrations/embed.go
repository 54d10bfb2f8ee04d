// Package migrations embeds the goose SQL migrations that create the core's
// schema idempotently.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
