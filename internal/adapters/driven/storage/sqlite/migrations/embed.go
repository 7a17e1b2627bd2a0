// Package migrations holds the record store schema as numbered
// up/down SQL files.
package migrations

import "embed"

// FS is read by the store on open; files apply in name order.
//
//go:embed *.sql
var FS embed.FS
