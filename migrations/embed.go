package migrations

import "embed"

// FS carries the goose SQL migrations into the binary.
//
//go:embed *.sql
var FS embed.FS
