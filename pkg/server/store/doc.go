// Package store provides storage abstractions for the metastore server.
//
// This package defines interfaces for database operations, allowing the
// server endpoints to be decoupled from the specific database implementation.
//
// # Available Stores
//
//   - TagStore: versioned objects of the registered kinds, tags and latest resolution
//   - ProjectsStore: project records
//   - RunsStore: run documents per iteration
//   - SchedulesStore: named schedules
//   - HealthStore: connectivity probe
//
// # Usage
//
//	tags, _ := gorm.NewTagStore(db, model.DefaultKinds())
//	rec, err := tags.Read(ctx, "artifact", "model", store.ReadOptions{Project: "p1", Tag: "prod"})
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Handle not found
//	    }
//	}
package store
