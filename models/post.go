package models

import "time"

type Post struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Platform    Platform   `json:"platform" gorm:"type:varchar(32);not null;index;check:chk_posts_platform,platform IN ('youtube_long','youtube_short','instagram','tiktok')"`
	Title       string     `json:"title" gorm:"type:text;not null"`
	Description *string    `json:"description" gorm:"type:text"`
	PublishAt   *time.Time `json:"publish_at" gorm:"index"`
	Status      Status     `json:"status" gorm:"type:varchar(32);not null;default:idea;index;check:chk_posts_status,status IN ('idea','in_production','ready','scheduled','published')"`
	Tags        *string    `json:"tags" gorm:"type:text"`
	SeriesID    *uint      `json:"series_id" gorm:"index"`
	Series      *Series    `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	SeriesName  *string    `json:"series_name,omitempty" gorm:"->;-:migration"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

// TagList returns the post's comma separated tags.
func (p Post) TagList() []string {
	if p.Tags == nil {
		return nil
	}
	return SplitList(*p.Tags)
}
