package models

import "time"

// ProviderKind values match the marketplace categories.
const (
	ProviderDoctor   = "doctor"
	ProviderClinic   = "clinic"
	ProviderLab      = "lab"
	ProviderSpa      = "spa"
	ProviderCareHome = "care_home"
)

type Provider struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;not null" json:"name"`
	Slug      string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Kind      string `gorm:"size:20;index;default:'doctor'" json:"kind"`
	Specialty string `gorm:"size:100;index" json:"specialty"`
	City      string `gorm:"size:100;index" json:"city"`
	Phone     string `gorm:"size:20" json:"phone"`
	Address   string `gorm:"size:255" json:"address"`
	Timezone  string `gorm:"size:64" json:"timezone"`
	PhotoURL  string `gorm:"size:512" json:"photo_url"`

	// SlotDurationMin is the default granularity when no service is chosen.
	SlotDurationMin   int `gorm:"default:30" json:"slot_duration_min"`
	MinAdvanceMinutes int `gorm:"default:60" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
