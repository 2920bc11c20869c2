package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/config"
	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/services"
)

type Server struct {
	*http.Server
	startupTime time.Time
	redis       *redis.Client
}

func NewServer(ctx context.Context, c map[string]string, database database.Database, clock services.Clock) (Server, error) {
	port := config.GetString(c, "PORT", "8080")
	address := fmt.Sprintf("0.0.0.0:%s", port) // Bind to 0.0.0.0 for external access

	startupTime := clock.Now()

	store, err := services.NewSnapshotStore(ctx, c)
	if err != nil {
		return Server{}, err
	}

	opts := []func(*router){withConfig(c), withClock(clock), withStartupTime(startupTime), withSnapshotStore(store)}

	var redisClient *redis.Client
	if addr := config.GetString(c, "REDIS_ADDR", ""); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr})
		limit := config.GetInt(c, "LOGIN_ATTEMPTS_PER_MINUTE", 10)
		opts = append(opts, withThrottle(NewRedisThrottle(redisClient, limit)))
		log.Info().Str("addr", addr).Int("limit", limit).Msg("Login throttle enabled")
	}

	router := newRouter(database, opts...)

	readTimeout := config.GetDuration(c, "READ_TIMEOUT_SECONDS", time.Second, 180)
	writeTimeout := config.GetDuration(c, "WRITE_TIMEOUT_SECONDS", time.Second, 180)
	idleTimeout := config.GetDuration(c, "IDLE_TIMEOUT_SECONDS", time.Second, 180)

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  readTimeout,  // Timeout for reading the entire request
		WriteTimeout: writeTimeout, // Timeout for writing the response
		IdleTimeout:  idleTimeout,  // Timeout for idle connections
	}

	return Server{server, startupTime, redisClient}, nil
}

type router struct {
	config      map[string]string
	startupTime time.Time
	clock       services.Clock
	throttle    LoginThrottle
	store       services.SnapshotStore
}

func withConfig(c map[string]string) func(*router) {
	return func(r *router) {
		r.config = c
	}
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

func withClock(clock services.Clock) func(*router) {
	return func(r *router) {
		r.clock = clock
	}
}

func withThrottle(throttle LoginThrottle) func(*router) {
	return func(r *router) {
		r.throttle = throttle
	}
}

func withSnapshotStore(store services.SnapshotStore) func(*router) {
	return func(r *router) {
		r.store = store
	}
}

func newRouter(database database.Database, opts ...func(*router)) *chi.Mux {
	router := router{
		clock:    services.SystemClock{},
		throttle: noThrottle{},
	}
	for _, opt := range opts {
		opt(&router)
	}
	if router.startupTime.IsZero() {
		router.startupTime = router.clock.Now()
	}
	if router.store == nil {
		router.store = services.DirStore{Dir: config.GetString(router.config, "BACKUP_DIR", "backup")}
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)

	secret := config.GetString(router.config, "SESSION_SECRET", "")
	if secret == "" {
		log.Warn().Msg("SESSION_SECRET not set, sessions will not survive a restart")
		secret = uuid.NewString()
	}
	ttl := config.GetDuration(router.config, "SESSION_TTL_HOURS", time.Hour, 168)
	auth := services.NewAuthenticator(database, router.clock, secret, ttl)

	// Initialize all handlers
	handlers := initializeHandlers(database, auth, router)
	sessions := newSessionMiddleware(auth)

	acceptedOrigins := config.GetList(router.config, "ACCEPTED_ORIGINS")
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(corsMiddleware(acceptedOrigins))

	setupRoutes(chiRouter, handlers, sessions)

	return chiRouter
}

// Start serves until the server is shut down.
func (s Server) Start() error {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing redis client")
		}
	}
}
