package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/solocreator/planner/models"
)

type TodoRepo struct {
	db *gorm.DB
}

func NewTodoRepo(db *gorm.DB) *TodoRepo {
	return &TodoRepo{db}
}

// FindAll returns todos by due date, undated ones placed by their creation time.
func (r *TodoRepo) FindAll(ctx context.Context) ([]models.Todo, error) {
	todos := []models.Todo{}
	err := r.db.WithContext(ctx).Order("COALESCE(due_date, created_at), id").Find(&todos).Error
	return todos, err
}

func (r *TodoRepo) Add(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// Toggle flips the todo between open and done in one statement and reports how many rows matched.
func (r *TodoRepo) Toggle(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", id).
		Update("status", gorm.Expr("CASE status WHEN ? THEN ? ELSE ? END", models.TodoOpen, models.TodoDone, models.TodoOpen))
	return res.RowsAffected, res.Error
}
