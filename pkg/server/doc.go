// Package server provides the HTTP server for the metastore API.
//
// The server routes requests with gorilla/mux, writes an access log through
// logrus and tags every request with an X-Request-ID.
//
// # Server Setup
//
//	srv := server.NewServer(db, server.Stores{
//	    Tags:      tagStore,
//	    Projects:  projectsStore,
//	    Runs:      runsStore,
//	    Schedules: schedulesStore,
//	    Health:    healthStore,
//	}, cfg)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//   - /projects/{project} - project records
//   - /projects/{project}/{kind}/{key} - versioned objects
//   - /projects/{project}/tags/{tag} - tags across kinds
//   - /projects/{project}/runs/{uid} - runs
//   - /projects/{project}/schedules/{name} - schedules
package server
