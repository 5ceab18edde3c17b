// Package db holds the SQL migrations for inscricao so they can be
// embedded in production builds of inscricaoctl.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
