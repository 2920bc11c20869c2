package models

import "time"

type Idea struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:text;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Category    *string   `json:"category" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;index;autoCreateTime:false"`
}
