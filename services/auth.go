package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/errs"
	"github.com/solocreator/planner/models"
)

// Session is the logged-in user attached to a request.
type Session struct {
	ID        string    `json:"-"`
	UserID    uint      `json:"id"`
	Email     string    `json:"email"`
	CSRF      string    `json:"csrf"`
	ExpiresAt time.Time `json:"-"`
}

// CheckCSRF compares token with the session's CSRF token in constant time.
func (s *Session) CheckCSRF(token string) bool {
	if s == nil || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.CSRF), []byte(token)) == 1
}

// Authenticator issues and resolves browser sessions. The cookie holds a signed token
// naming a session row; the row holds the CSRF token.
type Authenticator struct {
	db     database.Database
	clock  Clock
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
}

func NewAuthenticator(db database.Database, clock Clock, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{
		db:     db,
		clock:  clock,
		secret: []byte(secret),
		ttl:    ttl,
		logger: log.With().Str("service", "auth").Logger(),
	}
}

// Login checks credentials and opens a new session. It returns the session and the signed
// token to store in the cookie.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, string, error) {
	email = strings.TrimSpace(email)
	user, err := a.db.UserRepo().FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", errs.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, "", errs.NewDatabaseError("find", "user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		a.logger.Info().Str("email", email).Msg("Rejected login")
		return nil, "", errs.NewInvalidCredentialsError()
	}

	csrf, err := newCSRFToken()
	if err != nil {
		return nil, "", errs.NewInternalErrorWithCause("generate csrf token", err)
	}
	now := a.clock.Now().UTC()
	row := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CSRFToken: csrf,
		ExpiresAt: now.Add(a.ttl),
		CreatedAt: now,
	}
	if err := a.db.SessionRepo().Add(ctx, row); err != nil {
		return nil, "", errs.NewDatabaseError("create", "session", err)
	}
	if n, err := a.db.SessionRepo().DeleteExpired(ctx, now); err != nil {
		a.logger.Warn().Err(err).Msg("Could not prune expired sessions")
	} else if n > 0 {
		a.logger.Debug().Int64("count", n).Msg("Pruned expired sessions")
	}

	token, err := a.sign(row)
	if err != nil {
		return nil, "", err
	}
	return &Session{
		ID:        row.ID,
		UserID:    user.ID,
		Email:     user.Email,
		CSRF:      csrf,
		ExpiresAt: row.ExpiresAt,
	}, token, nil
}

// Resolve verifies a cookie token and loads its live session.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errs.NewMissingTokenError()
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.clock.Now))
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errs.NewSessionExpiredError()
	}
	if err != nil || claims.ID == "" {
		return nil, errs.NewInvalidTokenError()
	}

	row, err := a.db.SessionRepo().FindByID(ctx, claims.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewInvalidTokenError()
	}
	if err != nil {
		return nil, errs.NewDatabaseError("find", "session", err)
	}
	if row.Expired(a.clock.Now()) {
		return nil, errs.NewSessionExpiredError()
	}

	session := &Session{ID: row.ID, UserID: row.UserID, CSRF: row.CSRFToken, ExpiresAt: row.ExpiresAt}
	if row.User != nil {
		session.Email = row.User.Email
	}
	return session, nil
}

// Logout ends the session. Ending an already ended session is not an error.
func (a *Authenticator) Logout(ctx context.Context, session *Session) error {
	if session == nil {
		return nil
	}
	if err := a.db.SessionRepo().Delete(ctx, session.ID); err != nil {
		return errs.NewDatabaseError("delete", "session", err)
	}
	return nil
}

// ChangePassword sets a new password and ends all of the user's sessions.
func (a *Authenticator) ChangePassword(ctx context.Context, email, password string) error {
	if strings.TrimSpace(password) == "" {
		return errs.NewValidationError([]string{"password is required"})
	}
	user, err := a.db.UserRepo().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return errs.NewDatabaseError("find", "user", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errs.NewInternalErrorWithCause("hash password", err)
	}
	return a.db.Transaction(ctx, func(tx database.Database) error {
		if _, err := tx.UserRepo().UpdatePassword(ctx, user.ID, string(hash)); err != nil {
			return errs.NewDatabaseError("update", "user", err)
		}
		if err := tx.SessionRepo().DeleteForUser(ctx, user.ID); err != nil {
			return errs.NewDatabaseError("delete", "sessions", err)
		}
		return nil
	})
}

func (a *Authenticator) sign(row *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        row.ID,
		Subject:   strconv.FormatUint(uint64(row.UserID), 10),
		IssuedAt:  jwt.NewNumericDate(row.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("sign session token", err)
	}
	return token, nil
}

func newCSRFToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
