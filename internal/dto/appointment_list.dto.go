package dto

import "time"

type AppointmentListDTO struct {
	ID          uint      `json:"id"`
	Reference   string    `json:"reference"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	PatientName string    `json:"patient_name"`
	ServiceName string    `json:"service_name,omitempty"`
	Reason      string    `json:"reason,omitempty"`
}
