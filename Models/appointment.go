package Models

import (
	"gorm.io/gorm"
)

type Appointment struct {
	gorm.Model
	DateTime          string `json:"date_time"`
	AppointmentSlotID uint
	ProviderID        uint   `json:"provider_id"`
	ProviderName      string `json:"provider_name"`
	PatientName       string `json:"patient_name"`
	PatientID         uint   `json:"patient_id"`
	Modality          string `json:"modality"`
	IsCompleted       bool   `json:"is_completed"`
	Notes             string `json:"notes"`
	ReminderSent      bool   `json:"reminder_sent"`
	PracticeGroupID   uint   `json:"practice_group_id"`
}
