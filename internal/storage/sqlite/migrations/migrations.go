// Package migrations embeds the SQL schema migrations of the sqlite backend.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
