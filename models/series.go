package models

type Series struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"type:text;not null"`
	Description *string `json:"description" gorm:"type:text"`
}

// Series is already plural.
func (Series) TableName() string {
	return "series"
}
