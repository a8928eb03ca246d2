package models

import "time"

type Appointment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"size:36;uniqueIndex" json:"reference"`

	ProviderID uint     `gorm:"index:idx_appointments_provider_start" json:"provider_id"`
	Provider   Provider `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"provider"`

	PatientID uint    `json:"patient_id"`
	Patient   Patient `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"patient"`

	MedicalServiceID *uint          `json:"medical_service_id"`
	MedicalService   MedicalService `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"medical_service"`

	// Reason is filled for bookings made without a listed service.
	Reason string `gorm:"size:255" json:"reason"`

	StartTime time.Time `gorm:"index:idx_appointments_provider_start" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime).Minutes())
}
