// Package migrations bundles the chat schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
