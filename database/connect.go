package database

import (
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/solocreator/planner/config"
	"github.com/solocreator/planner/errs"
)

const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Connect opens the store selected by DB_TYPE and registers any read replicas.
func Connect(cfg map[string]string) (*gorm.DB, error) {
	dbType := strings.ToLower(config.GetString(cfg, "DB_TYPE", TypeSQLite))

	gormCfg := &gorm.Config{
		PrepareStmt: false,
		Logger:      newGormLogger(),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch dbType {
	case TypeSQLite:
		path := config.GetString(cfg, "DB_PATH", "data.sqlite")
		db, err = gorm.Open(sqlite.Open(SQLiteDSN(path)), gormCfg)
		if err == nil {
			err = limitToSingleConnection(db)
		}
		log.Info().Str("path", path).Msg("Connecting to SQLite database")
	case TypePostgres:
		dsn := config.GetString(cfg, "DATABASE_URL", "")
		if dsn == "" {
			return nil, errs.NewEnvironmentVariableError("DATABASE_URL")
		}
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gormCfg)
		log.Info().Msg("Connecting to postgres database")
	default:
		return nil, errs.NewConfigInvalidError("DB_TYPE", dbType)
	}
	if err != nil {
		return nil, errs.NewDatabaseError("connect to", dbType, err)
	}

	if replicas := config.GetList(cfg, "DB_REPLICA_URLS"); len(replicas) > 0 {
		if err := registerReplicas(db, dbType, replicas); err != nil {
			return nil, err
		}
	}

	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, errs.NewDatabaseError("test", "connection", err)
	}
	return db, nil
}

// SQLiteDSN enables foreign keys on every connection and waits on locks instead of failing.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
}

// sqlite serialises writers anyway; one connection keeps transactions from tripping over SQLITE_BUSY.
func limitToSingleConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

func registerReplicas(db *gorm.DB, dbType string, urls []string) error {
	dialectors := make([]gorm.Dialector, 0, len(urls))
	for _, url := range urls {
		if dbType == TypeSQLite {
			dialectors = append(dialectors, sqlite.Open(SQLiteDSN(url)+"&mode=ro"))
		} else {
			dialectors = append(dialectors, postgres.Open(url))
		}
	}

	err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: dialectors,
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return errs.NewDatabaseError("register", "read replicas", err)
	}
	log.Info().Int("replicas", len(urls)).Msg("Registered read replicas")
	return nil
}

func newGormLogger() logger.Interface {
	return logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// OpenInMemory opens a private, migrated in-memory SQLite database. The database lives
// as long as at least one connection to it is open.
func OpenInMemory() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := limitToSingleConnection(db); err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
