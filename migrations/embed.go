// Package migrations holds the SQL migrations applied after the GORM schema sync.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
