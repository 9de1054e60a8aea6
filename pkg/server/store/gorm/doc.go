// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The implementations run on PostgreSQL in production and on SQLite for
// embedded use and tests. Queries are written in the SQL subset both
// dialects accept, including ON CONFLICT upserts.
package gorm
