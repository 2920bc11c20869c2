package database

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/solocreator/planner/models"
)

type PostRepo struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) *PostRepo {
	return &PostRepo{db}
}

// PostQuery narrows a post listing. Empty fields do not filter.
type PostQuery struct {
	Platform models.Platform
	Status   models.Status
	Text     string
}

// FindAll returns posts matching q ordered by publish time, falling back to creation time.
func (r *PostRepo) FindAll(ctx context.Context, q PostQuery) ([]models.Post, error) {
	tx := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, series.name AS series_name").
		Joins("LEFT JOIN series ON series.id = posts.series_id")

	if q.Platform != "" {
		tx = tx.Where("posts.platform = ?", q.Platform)
	}
	if q.Status != "" {
		tx = tx.Where("posts.status = ?", q.Status)
	}
	if text := strings.TrimSpace(q.Text); text != "" {
		like := "%" + escapeLike(strings.ToLower(text)) + "%"
		tx = tx.Where(
			`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(posts.description, '')) LIKE ? ESCAPE '\' OR LOWER(COALESCE(posts.tags, '')) LIKE ? ESCAPE '\')`,
			like, like, like,
		)
	}

	posts := []models.Post{}
	err := tx.Order("COALESCE(posts.publish_at, posts.created_at), posts.id").Find(&posts).Error
	return posts, err
}

// FindScheduled returns scheduled or published posts that have a publish time, earliest first.
func (r *PostRepo) FindScheduled(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Where("publish_at IS NOT NULL AND status IN ?", []models.Status{models.StatusScheduled, models.StatusPublished}).
		Order("publish_at, id").
		Find(&posts).Error
	return posts, err
}

// FindByID returns a post by its ID
func (r *PostRepo) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Add inserts a new post into the database
func (r *PostRepo) Add(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateFields writes only the given columns and reports how many rows matched.
func (r *PostRepo) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	return res.RowsAffected, res.Error
}

// CountByPlatformStatus counts posts whose publish time falls in [from, to).
func (r *PostRepo) CountByPlatformStatus(ctx context.Context, from, to time.Time) ([]models.PlatformStatusCount, error) {
	rows := []models.PlatformStatusCount{}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("platform, status, COUNT(*) AS count").
		Where("publish_at >= ? AND publish_at < ?", from.UTC(), to.UTC()).
		Group("platform, status").
		Order("platform, status").
		Scan(&rows).Error
	return rows, err
}

// CountBySeriesStatus counts every post by series name and status. Posts without a
// series are reported under a nil name, first on every dialect.
func (r *PostRepo) CountBySeriesStatus(ctx context.Context) ([]models.SeriesStatusCount, error) {
	rows := []models.SeriesStatusCount{}
	err := r.db.WithContext(ctx).
		Table("posts").
		Select("series.name AS series, posts.status AS status, COUNT(posts.id) AS count").
		Joins("LEFT JOIN series ON series.id = posts.series_id").
		Group("series.name, posts.status").
		Order("series.name IS NOT NULL, series.name, posts.status").
		Scan(&rows).Error
	return rows, err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
