package api

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/services"
)

type exportHandler struct {
	responder Responder
	logger    zerolog.Logger
	planner   *services.Planner
	clock     services.Clock
}

func newExportHandler(planner *services.Planner, clock services.Clock) exportHandler {
	logger := log.With().Str("handlerName", "exportHandler").Logger()

	return exportHandler{
		responder: NewResponder(logger),
		logger:    logger,
		planner:   planner,
		clock:     clock,
	}
}

// exportCSV downloads the filtered post list as CSV
// @Summary Export posts as CSV
// @Tags Export
// @Produce text/csv
// @Param platform query string false "Platform filter"
// @Param status query string false "Status filter"
// @Param q query string false "Text search"
// @Success 200 {file} file "posts.csv"
// @Failure 401 {object} ErrorResponse "Login required"
// @Router /export/posts.csv [get]
func (h exportHandler) exportCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := postFilter(r, nil)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		posts, err := h.planner.ListPosts(r.Context(), filter)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		// Render fully before writing so a failure can still become a JSON error
		var buf bytes.Buffer
		if err := services.WritePostsCSV(&buf, posts); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="posts.csv"`)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Error().Err(err).Msg("error writing csv export")
		}
	}
}

// exportCalendar downloads scheduled and published posts as an iCalendar feed
// @Summary Export post calendar
// @Tags Export
// @Produce text/calendar
// @Success 200 {file} file "posts.ics"
// @Failure 401 {object} ErrorResponse "Login required"
// @Router /export/posts.ics [get]
func (h exportHandler) exportCalendar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.planner.CalendarPosts(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var buf bytes.Buffer
		if err := services.WriteCalendar(&buf, posts, h.clock.Now()); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="posts.ics"`)
		if _, err := buf.WriteTo(w); err != nil {
			h.logger.Error().Err(err).Msg("error writing calendar export")
		}
	}
}
