package api

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/services"
)

type backupHandler struct {
	responder Responder
	logger    zerolog.Logger
	backups   *services.Backups
}

func newBackupHandler(backups *services.Backups) backupHandler {
	logger := log.With().Str("handlerName", "backupHandler").Logger()

	return backupHandler{
		responder: NewResponder(logger),
		logger:    logger,
		backups:   backups,
	}
}

// download streams a consistent copy of the database
// @Summary Download database backup
// @Tags Backup
// @Produce application/vnd.sqlite3
// @Success 200 {file} file "planner-<timestamp>.sqlite"
// @Failure 401 {object} ErrorResponse "Login required"
// @Router /backup [get]
func (h backupHandler) download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := h.backups.WriteTo(r.Context(), &buf); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.sqlite3")
		w.Header().Set("Content-Disposition", `attachment; filename="`+h.backups.FileName()+`"`)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Error().Err(err).Msg("error writing backup")
		}
	}
}

// snapshot stores a copy of the database in the configured backup store
// @Summary Store database snapshot
// @Tags Backup
// @Produce json
// @Success 200 {object} snapshotResponse "Where the snapshot was stored"
// @Failure 403 {object} ErrorResponse "Bad CSRF token"
// @Router /backup/snapshot [post]
func (h backupHandler) snapshot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location, err := h.backups.Snapshot(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, snapshotResponse{OK: true, Location: location})
	}
}
