package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/solocreator/planner/models"
)

type TemplateRepo struct {
	db *gorm.DB
}

func NewTemplateRepo(db *gorm.DB) *TemplateRepo {
	return &TemplateRepo{db}
}

func (r *TemplateRepo) FindAll(ctx context.Context) ([]models.Template, error) {
	templates := []models.Template{}
	err := r.db.WithContext(ctx).Order("name, id").Find(&templates).Error
	return templates, err
}

func (r *TemplateRepo) FindByID(ctx context.Context, id uint) (*models.Template, error) {
	var template models.Template
	if err := r.db.WithContext(ctx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *TemplateRepo) Add(ctx context.Context, template *models.Template) error {
	return r.db.WithContext(ctx).Create(template).Error
}
