package api

import (
	"github.com/solocreator/planner/config"
	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, auth *services.Authenticator, r router) *routeHandlers {
	planner := services.NewPlanner(db, r.clock)
	cookieSecure := config.GetBool(r.config, "COOKIE_SECURE", false)

	return &routeHandlers{
		actionHandler: newActionHandler(planner, auth, r.throttle, r.clock, cookieSecure),
		exportHandler: newExportHandler(planner, r.clock),
		backupHandler: newBackupHandler(services.NewBackups(db, r.store, r.clock)),
		healthHandler: newHealthHandler(db, r.startupTime),
	}
}
