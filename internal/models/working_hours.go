package models

import "time"

// WorkingHours is one weekday of a provider's weekly template.
// Weekday follows time.Weekday (0 = Sunday).
type WorkingHours struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"index" json:"provider_id"`

	Weekday int `json:"weekday"`

	StartTime  string `gorm:"size:5" json:"start_time"`
	EndTime    string `gorm:"size:5" json:"end_time"`
	LunchStart string `gorm:"size:5" json:"lunch_start"`
	LunchEnd   string `gorm:"size:5" json:"lunch_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScheduleBreak is recurring when Weekday is set, one-off when Date is set,
// and daily when neither is.
type ScheduleBreak struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"index" json:"provider_id"`

	Weekday   *int    `json:"weekday"`
	Date      *string `gorm:"size:10" json:"date"`
	StartTime string  `gorm:"size:5;not null" json:"start_time"`
	EndTime   string  `gorm:"size:5;not null" json:"end_time"`
	Reason    string  `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

// Holiday closes the provider from StartDate to EndDate inclusive.
type Holiday struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ProviderID uint `gorm:"index" json:"provider_id"`

	StartDate string `gorm:"size:10;not null" json:"start_date"`
	EndDate   string `gorm:"size:10;not null" json:"end_date"`
	Reason    string `gorm:"size:255" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}
