package models

type Template struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Name       string `json:"name" gorm:"type:text;not null"`
	DaysOfWeek string `json:"days_of_week" gorm:"type:text;not null"`
	Platforms  string `json:"platforms" gorm:"type:text;not null"`
}

// Weekdays returns the template's weekday tokens as written.
func (t Template) Weekdays() []string {
	return SplitList(t.DaysOfWeek)
}

// PlatformList returns the template's platform tokens.
func (t Template) PlatformList() []Platform {
	var out []Platform
	for _, p := range SplitList(t.Platforms) {
		out = append(out, Platform(p))
	}
	return out
}
