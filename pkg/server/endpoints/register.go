package endpoints

import (
	"github.com/doodlesbykumbi/metastore/pkg/server"
)

// RegisterAll registers all API endpoints on the server. Routes with a
// fixed second segment (tags, runs, schedules, tag-refs) are registered
// before the versioned-object routes whose {kind} segment would match them.
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterProjectsEndpoints(srv)
	RegisterTagsEndpoints(srv)
	RegisterRunsEndpoints(srv)
	RegisterSchedulesEndpoints(srv)
	RegisterVersionsEndpoints(srv)
}
