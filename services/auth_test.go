package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *testClock) {
	t.Helper()
	_, db, clock := newTestPlanner(t)
	require.NoError(t, database.SeedAdmin(context.Background(), db.DB(), "admin@example.com", "admin", clock.Now()))
	return NewAuthenticator(db, clock, "test-secret", time.Hour), clock
}

func TestLoginAndResolve(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	ctx := context.Background()

	session, token, err := auth.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	assert.Len(t, session.CSRF, 32)
	assert.Equal(t, "admin@example.com", session.Email)
	assert.NotEmpty(t, token)

	resolved, err := auth.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, resolved.ID)
	assert.Equal(t, session.UserID, resolved.UserID)
	assert.Equal(t, "admin@example.com", resolved.Email)
	assert.True(t, resolved.CheckCSRF(session.CSRF))
	assert.False(t, resolved.CheckCSRF("nope"))
	assert.False(t, resolved.CheckCSRF(""))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	ctx := context.Background()

	_, _, err := auth.Login(ctx, "admin@example.com", "wrong")
	assert.True(t, errs.IsInvalidCredentialsError(err))

	_, _, err = auth.Login(ctx, "nobody@example.com", "admin")
	assert.True(t, errs.IsInvalidCredentialsError(err))
}

func TestResolveRejectsExpiredForgedAndEndedSessions(t *testing.T) {
	auth, clock := newTestAuthenticator(t)
	ctx := context.Background()

	_, err := auth.Resolve(ctx, "")
	assert.True(t, errs.IsMissingTokenError(err))

	_, err = auth.Resolve(ctx, "not-a-token")
	assert.True(t, errs.IsInvalidTokenError(err))

	other := NewAuthenticator(auth.db, clock, "other-secret", time.Hour)
	_, forged, err := other.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	_, err = auth.Resolve(ctx, forged)
	assert.True(t, errs.IsInvalidTokenError(err))

	session, token, err := auth.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, session))
	_, err = auth.Resolve(ctx, token)
	assert.True(t, errs.IsInvalidTokenError(err))

	_, token, err = auth.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	_, err = auth.Resolve(ctx, token)
	assert.True(t, errs.IsSessionExpiredError(err))
}

func TestChangePasswordEndsSessions(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	ctx := context.Background()

	_, token, err := auth.Login(ctx, "admin@example.com", "admin")
	require.NoError(t, err)

	require.NoError(t, auth.ChangePassword(ctx, "admin@example.com", "s3cret"))

	_, err = auth.Resolve(ctx, token)
	assert.Error(t, err)
	_, _, err = auth.Login(ctx, "admin@example.com", "admin")
	assert.True(t, errs.IsInvalidCredentialsError(err))
	_, _, err = auth.Login(ctx, "admin@example.com", "s3cret")
	assert.NoError(t, err)

	assert.True(t, errs.IsValidationError(auth.ChangePassword(ctx, "admin@example.com", " ")))
	assert.True(t, errs.IsNotFound(auth.ChangePassword(ctx, "nobody@example.com", "x")))
}
