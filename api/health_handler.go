package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          database.Database
	startupTime time.Time
}

func newHealthHandler(db database.Database, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.db.Ping(r.Context()); err != nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("database", err))
			return
		}
		h.responder.WriteJSON(w, healthResponse{
			Status:    "ok",
			Uptime:    time.Since(h.startupTime).Round(time.Second).String(),
			StartedAt: h.startupTime.UTC().Format(time.RFC3339),
		})
	}
}
