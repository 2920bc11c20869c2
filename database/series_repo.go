package database

import (
	"context"

	"gorm.io/gorm"

	"github.com/solocreator/planner/models"
)

type SeriesRepo struct {
	db *gorm.DB
}

func NewSeriesRepo(db *gorm.DB) *SeriesRepo {
	return &SeriesRepo{db}
}

// FindAll returns every series ordered by name
func (r *SeriesRepo) FindAll(ctx context.Context) ([]models.Series, error) {
	series := []models.Series{}
	err := r.db.WithContext(ctx).Order("name, id").Find(&series).Error
	return series, err
}

func (r *SeriesRepo) Add(ctx context.Context, series *models.Series) error {
	return r.db.WithContext(ctx).Create(series).Error
}
