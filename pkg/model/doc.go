// Package model defines the database models for the metastore.
//
// The schema is shared between PostgreSQL and SQLite; see db/migrations.
//
// # Taggable kinds
//
// Each taggable kind owns a pair of tables: one holding versioned objects
// and one holding tag mappings onto those objects.
//
//   - artifact: artifacts / artifacts_tags
//   - function: functions / functions_tags
//   - feature-set: feature_sets / feature_sets_tags
//
// The set of kinds is declared statically with DefaultKinds and handed to
// the tag store at construction time.
//
// # Supporting models
//
//   - Project: project records (name unique)
//   - Run: run documents keyed by (project, uid, iter)
//   - Schedule: schedules keyed by (project, name) with a surrogate id
package model
