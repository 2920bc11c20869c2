package api

import (
	"context"

	"github.com/solocreator/planner/services"
)

type keyType string

const sessionKey keyType = "session"

// ctxWithSession adds the logged-in session to the context
func ctxWithSession(ctx context.Context, session *services.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ctxGetSession returns the request's session, or nil when nobody is logged in.
func ctxGetSession(ctx context.Context) *services.Session {
	session, _ := ctx.Value(sessionKey).(*services.Session)
	return session
}
