package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/solocreator/planner/api"
	"github.com/solocreator/planner/config"
	"github.com/solocreator/planner/database"
	"github.com/solocreator/planner/models"
	"github.com/solocreator/planner/services"
)

var (
	// Flags
	generateOut   string
	passwdEmail   string
	passwdNewPass string
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Content planning backend for solo creators",
	Long: `planner serves the content calendar API: posts across platforms, ideas,
todos, series, weekly templates and reports, backed by SQLite or Postgres.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Migrate the schema and generate typed query helpers",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		log.Info().Str("out", generateOut).Msg("Generating models and query helpers...")
		return models.GenerateModels(db, generateOut)
	},
}

var columnReportCmd = &cobra.Command{
	Use:   "column-report",
	Short: "List table columns that no model field maps to",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		report := models.GenerateColumnMismatchReport(db, cmd.OutOrStdout())
		if len(report) > 0 {
			return fmt.Errorf("%d tables have unmapped columns", len(report))
		}
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:     "passwd",
	Short:   "Set a user's password and end their sessions",
	Example: `  planner passwd --email admin@example.com --password 's3cret'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		auth := services.NewAuthenticator(
			database.New(db),
			services.SystemClock{},
			config.GetString(cfg, "SESSION_SECRET", ""),
			config.GetDuration(cfg, "SESSION_TTL_HOURS", time.Hour, 168),
		)
		if err := auth.ChangePassword(cmd.Context(), passwdEmail, passwdNewPass); err != nil {
			return err
		}
		log.Info().Str("email", passwdEmail).Msg("Password changed")
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "./query", "directory for generated query helpers")
	passwdCmd.Flags().StringVar(&passwdEmail, "email", "", "account email")
	passwdCmd.Flags().StringVar(&passwdNewPass, "password", "", "new password")
	_ = passwdCmd.MarkFlagRequired("email")
	_ = passwdCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, generateCmd, columnReportCmd, passwdCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("planner failed")
		os.Exit(1)
	}
}

// loadConfig reads .env, the process environment and any SSM parameters, then applies LOG_LEVEL.
func loadConfig(ctx context.Context) (map[string]string, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	cfg := config.New()
	if err := config.LoadParameters(ctx, cfg); err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(config.GetString(cfg, "LOG_LEVEL", "info")))
	if err != nil {
		log.Warn().Str("LOG_LEVEL", cfg["LOG_LEVEL"]).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

// openDatabase connects to the configured store and brings the schema up to date.
func openDatabase(ctx context.Context) (map[string]string, *gorm.DB, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, db, err := openDatabase(ctx)
	if err != nil {
		return err
	}

	clock := services.SystemClock{}
	if err := seedAdmin(ctx, cfg, db, clock); err != nil {
		return err
	}

	server, err := api.NewServer(ctx, cfg, database.New(db), clock)
	if err != nil {
		return fmt.Errorf("error initializing server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		server.ShutdownGracefully(30 * time.Second)
		return nil
	})
	return g.Wait()
}

// seedAdmin creates the configured administrator on first start.
func seedAdmin(ctx context.Context, cfg map[string]string, db *gorm.DB, clock services.Clock) error {
	email := config.GetString(cfg, "ADMIN_EMAIL", "admin@example.com")
	password := config.GetString(cfg, "ADMIN_PASSWORD", "admin")
	return database.SeedAdmin(ctx, db, email, password, clock.Now())
}
