package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/solocreator/planner/models"
)

type IdeaRepo struct {
	db *gorm.DB
}

func NewIdeaRepo(db *gorm.DB) *IdeaRepo {
	return &IdeaRepo{db}
}

// FindAll returns ideas newest first
func (r *IdeaRepo) FindAll(ctx context.Context) ([]models.Idea, error) {
	ideas := []models.Idea{}
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&ideas).Error
	return ideas, err
}

func (r *IdeaRepo) Add(ctx context.Context, idea *models.Idea) error {
	return r.db.WithContext(ctx).Create(idea).Error
}
