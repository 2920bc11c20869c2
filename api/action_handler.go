package api

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/services"
)

const (
	maxBodyBytes = 1 << 20
	csrfHeader   = "X-CSRF-Token"
)

type actionFunc func(w http.ResponseWriter, r *http.Request, body []byte) error

type action struct {
	public   bool // callable without a session
	mutating bool // needs a matching CSRF token
	run      actionFunc
}

type actionHandler struct {
	responder    Responder
	logger       zerolog.Logger
	planner      *services.Planner
	auth         *services.Authenticator
	throttle     LoginThrottle
	clock        services.Clock
	cookieSecure bool
	actions      map[string]action
}

func newActionHandler(planner *services.Planner, auth *services.Authenticator, throttle LoginThrottle, clock services.Clock, cookieSecure bool) actionHandler {
	logger := log.With().Str("handlerName", "actionHandler").Logger()
	h := actionHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		planner:      planner,
		auth:         auth,
		throttle:     throttle,
		clock:        clock,
		cookieSecure: cookieSecure,
	}
	h.actions = map[string]action{
		"login":  {public: true, run: h.login},
		"logout": {public: true, run: h.logout},
		"me":     {public: true, run: h.me},

		"posts_list":                   {run: h.listPosts},
		"posts_create":                 {mutating: true, run: h.createPost},
		"posts_update":                 {mutating: true, run: h.updatePost},
		"posts_duplicate_to_platforms": {mutating: true, run: h.duplicatePost},

		"ideas_list":   {run: h.listIdeas},
		"ideas_create": {mutating: true, run: h.createIdea},

		"todos_list":   {run: h.listTodos},
		"todos_create": {mutating: true, run: h.createTodo},
		"todos_toggle": {mutating: true, run: h.toggleTodo},

		"series_list":   {run: h.listSeries},
		"series_create": {mutating: true, run: h.createSeries},

		"templates_list":            {run: h.listTemplates},
		"templates_create":          {mutating: true, run: h.createTemplate},
		"templates_instatiate_week": {mutating: true, run: h.instantiateWeek},

		"report_weekly":               {run: h.weeklyReport},
		"report_series_effectiveness": {run: h.seriesReport},
	}
	return h
}

// dispatch runs the action named by the action query parameter or the body's action field.
func (h actionHandler) dispatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("request", err))
			return
		}

		var env envelope
		if len(body) > 0 {
			if err := json.Unmarshal(body, &env); err != nil {
				h.responder.WriteError(w, errs.NewInvalidJSONError(err))
				return
			}
		}

		name := r.URL.Query().Get("action")
		if name == "" {
			name = env.Action
		}
		act, ok := h.actions[name]
		if !ok {
			h.responder.WriteError(w, errs.NewUnknownActionError(name))
			return
		}

		session := ctxGetSession(r.Context())
		if !act.public && session == nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if act.mutating {
			token := env.CSRF
			if token == "" {
				token = r.Header.Get(csrfHeader)
			}
			if !session.CheckCSRF(token) {
				h.logger.Warn().Str("action", name).Msg("Rejected request with bad csrf token")
				h.responder.WriteError(w, errs.NewBadCSRFError())
				return
			}
		}

		if err := act.run(w, r, body); err != nil {
			h.responder.WriteError(w, err)
		}
	}
}

// decode reads an action payload. An empty body decodes as an empty object.
func decode(body []byte, v any) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

func (h actionHandler) login(w http.ResponseWriter, r *http.Request, body []byte) error {
	if err := h.throttle.Allow(r.Context(), clientIP(r)); err != nil {
		if errs.IsRateLimitError(err) {
			h.logger.Warn().Str("client", clientIP(r)).Msg("Throttled login attempt")
		}
		return err
	}

	var req loginRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" {
		return errs.NewMissingRequiredFieldError("email")
	}
	if req.Password == "" {
		return errs.NewMissingRequiredFieldError("password")
	}
	session, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.responder.WriteJSON(w, loginResponse{OK: true, CSRF: session.CSRF})
	return nil
}

func (h actionHandler) logout(w http.ResponseWriter, r *http.Request, _ []byte) error {
	if session := ctxGetSession(r.Context()); session != nil {
		if err := h.auth.Logout(r.Context(), session); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	h.responder.WriteJSON(w, okResponse{OK: true})
	return nil
}

func (h actionHandler) me(w http.ResponseWriter, r *http.Request, _ []byte) error {
	session := ctxGetSession(r.Context())
	if session == nil {
		h.responder.WriteJSON(w, meResponse{})
		return nil
	}
	id := session.UserID
	h.responder.WriteJSON(w, meResponse{ID: &id, Email: session.Email, CSRF: session.CSRF})
	return nil
}

// postFilter merges the body filter with query parameters, which win.
func postFilter(r *http.Request, body []byte) (services.PostFilter, error) {
	var filter services.PostFilter
	if err := decode(body, &filter); err != nil {
		return filter, err
	}
	query := r.URL.Query()
	if v := query.Get("platform"); v != "" {
		filter.Platform = v
	}
	if v := query.Get("status"); v != "" {
		filter.Status = v
	}
	if v := query.Get("q"); v != "" {
		filter.Q = v
	}
	return filter, nil
}

func (h actionHandler) listPosts(w http.ResponseWriter, r *http.Request, body []byte) error {
	filter, err := postFilter(r, body)
	if err != nil {
		return err
	}
	posts, err := h.planner.ListPosts(r.Context(), filter)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, posts)
	return nil
}

func (h actionHandler) createPost(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req createPostRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	post, err := h.planner.CreatePost(r.Context(), req.Post)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, createdResponse{OK: true, ID: post.ID})
	return nil
}

func (h actionHandler) updatePost(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req updatePostRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	if err := h.planner.UpdatePost(r.Context(), req.ID, req.Post); err != nil {
		return err
	}
	h.responder.WriteJSON(w, okResponse{OK: true})
	return nil
}

func (h actionHandler) duplicatePost(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req duplicatePostRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	ids, err := h.planner.DuplicatePost(r.Context(), req.ID, req.Platforms)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, duplicatedResponse{OK: true, NewIDs: ids})
	return nil
}

func (h actionHandler) listIdeas(w http.ResponseWriter, r *http.Request, _ []byte) error {
	ideas, err := h.planner.ListIdeas(r.Context())
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, ideas)
	return nil
}

func (h actionHandler) createIdea(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req services.NewIdea
	if err := decode(body, &req); err != nil {
		return err
	}
	idea, err := h.planner.CreateIdea(r.Context(), req)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, createdResponse{OK: true, ID: idea.ID})
	return nil
}

func (h actionHandler) listTodos(w http.ResponseWriter, r *http.Request, _ []byte) error {
	todos, err := h.planner.ListTodos(r.Context())
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, todos)
	return nil
}

func (h actionHandler) createTodo(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req services.NewTodo
	if err := decode(body, &req); err != nil {
		return err
	}
	todo, err := h.planner.CreateTodo(r.Context(), req)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, createdResponse{OK: true, ID: todo.ID})
	return nil
}

func (h actionHandler) toggleTodo(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req idRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	if err := h.planner.ToggleTodo(r.Context(), req.ID); err != nil {
		return err
	}
	h.responder.WriteJSON(w, okResponse{OK: true})
	return nil
}

func (h actionHandler) listSeries(w http.ResponseWriter, r *http.Request, _ []byte) error {
	series, err := h.planner.ListSeries(r.Context())
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, series)
	return nil
}

func (h actionHandler) createSeries(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req services.NewSeries
	if err := decode(body, &req); err != nil {
		return err
	}
	series, err := h.planner.CreateSeries(r.Context(), req)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, createdResponse{OK: true, ID: series.ID})
	return nil
}

func (h actionHandler) listTemplates(w http.ResponseWriter, r *http.Request, _ []byte) error {
	templates, err := h.planner.ListTemplates(r.Context())
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, templates)
	return nil
}

func (h actionHandler) createTemplate(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req createTemplateRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	template, err := h.planner.CreateTemplate(r.Context(), req.Name, req.DaysOfWeek, req.Platforms)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, createdResponse{OK: true, ID: template.ID})
	return nil
}

func (h actionHandler) instantiateWeek(w http.ResponseWriter, r *http.Request, body []byte) error {
	var req instantiateWeekRequest
	if err := decode(body, &req); err != nil {
		return err
	}
	anchor, err := h.dateOrToday(req.StartDate, "start_date")
	if err != nil {
		return err
	}
	ids, err := h.planner.InstantiateWeek(r.Context(), req.TemplateID, anchor)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, instantiatedResponse{OK: true, Created: ids})
	return nil
}

func (h actionHandler) weeklyReport(w http.ResponseWriter, r *http.Request, _ []byte) error {
	var start *time.Time
	if raw := r.URL.Query().Get("start"); raw != "" {
		day, err := services.ParseDate(raw)
		if err != nil {
			return errs.NewInvalidFieldError("start", "expected YYYY-MM-DD")
		}
		start = &day
	}
	report, err := h.planner.WeeklyReport(r.Context(), start)
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, report)
	return nil
}

func (h actionHandler) seriesReport(w http.ResponseWriter, r *http.Request, _ []byte) error {
	rows, err := h.planner.SeriesEffectivenessReport(r.Context())
	if err != nil {
		return err
	}
	h.responder.WriteJSON(w, rows)
	return nil
}

// dateOrToday parses a YYYY-MM-DD field, defaulting to the current local date.
func (h actionHandler) dateOrToday(raw, field string) (time.Time, error) {
	if raw == "" {
		return h.clock.Now().In(time.Local), nil
	}
	day, err := services.ParseDate(raw)
	if err != nil {
		return time.Time{}, errs.NewInvalidFieldError(field, "expected YYYY-MM-DD")
	}
	return day, nil
}

// clientIP returns the address the throttle keys on. RealIP has already rewritten
// RemoteAddr when a proxy header was present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
