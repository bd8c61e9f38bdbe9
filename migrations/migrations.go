// Package migrations embeds the ordered SQL migration list.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
