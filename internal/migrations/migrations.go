// Package migrations embeds the goose SQL migrations for the posts
// collection.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
