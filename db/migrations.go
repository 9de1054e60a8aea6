// Package db holds the SQL migrations for the metastore schema.
//
// Migrations live under migrations/<dialect> and are applied with
// golang-migrate. Both dialects describe the same tables.
package db

import "embed"

//go:embed migrations
var Migrations embed.FS
