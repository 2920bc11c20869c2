package models

import (
	"time"

	"gorm.io/datatypes"
)

type Todo struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"type:text;not null"`
	Description *string         `json:"description" gorm:"type:text"`
	DueDate     *datatypes.Date `json:"due_date" gorm:"index"`
	Status      TodoStatus      `json:"status" gorm:"type:varchar(16);not null;default:open;check:chk_todos_status,status IN ('open','done')"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null;autoCreateTime:false"`
}
