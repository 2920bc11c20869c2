package database

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/solocreator/planner/errs"
)

type Database struct {
	db           *gorm.DB
	userRepo     *UserRepo
	sessionRepo  *SessionRepo
	seriesRepo   *SeriesRepo
	postRepo     *PostRepo
	ideaRepo     *IdeaRepo
	todoRepo     *TodoRepo
	templateRepo *TemplateRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		userRepo:     NewUserRepo(db),
		sessionRepo:  NewSessionRepo(db),
		seriesRepo:   NewSeriesRepo(db),
		postRepo:     NewPostRepo(db),
		ideaRepo:     NewIdeaRepo(db),
		todoRepo:     NewTodoRepo(db),
		templateRepo: NewTemplateRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) SessionRepo() *SessionRepo {
	return d.sessionRepo
}

func (d Database) SeriesRepo() *SeriesRepo {
	return d.seriesRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) IdeaRepo() *IdeaRepo {
	return d.ideaRepo
}

func (d Database) TodoRepo() *TodoRepo {
	return d.todoRepo
}

func (d Database) TemplateRepo() *TemplateRepo {
	return d.templateRepo
}

// DB returns the shared connection.
func (d Database) DB() *gorm.DB {
	return d.db
}

// Transaction runs fn with repositories bound to a single transaction. Returning an
// error from fn rolls every write back. API errors from fn come back unchanged; anything
// else, such as a failed commit, is reported as a failed transaction.
func (d Database) Transaction(ctx context.Context, fn func(tx Database) error) error {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
	var apiErr *errs.ApiErr
	if err != nil && !errors.As(err, &apiErr) {
		return errs.NewTransactionFailedError("commit", err)
	}
	return err
}

// Ping checks the connection is usable.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
