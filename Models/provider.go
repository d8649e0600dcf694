package Models

import (
	"MindLine/Matching"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Provider struct {
	gorm.Model
	Name              string                      `json:"name"`
	UserID            uint                        `json:"user_id"`
	Phone             string                      `json:"phone"`
	Gender            string                      `json:"gender"`
	Specialties       datatypes.JSONSlice[string] `json:"specialties"`
	InsuranceAccepted datatypes.JSONSlice[string] `json:"insurance_accepted"`
	Location          string                      `json:"location"`
	VirtualAvailable  bool                        `json:"virtual_available"`
	InPersonAvailable bool                        `json:"in_person_available"`
	Slots             []AppointmentSlot           `json:"slots"`
	PhotoUrl          string                      `json:"photo_url"`
	IsFrozen          bool                        `json:"is_frozen" gorm:"-"`
	PracticeGroupID   uint                        `json:"practice_group_id"`
}

// AppointmentSlot is one bookable opening on a provider's calendar.
type AppointmentSlot struct {
	gorm.Model
	ProviderID  uint        `json:"provider_id"`
	DateTime    string      `json:"date_time"`
	IsAvailable bool        `json:"is_available"`
	// HeldByJobID is set while a notification job is offering this slot.
	HeldByJobID *uint       `json:"held_by_job_id" gorm:"default:null"`
	Appointment Appointment `gorm:"constraint:OnDelete:CASCADE;" json:"appointment"`
}

// Profile shapes the provider for the match evaluator.
func (provider *Provider) Profile() Matching.ProviderProfile {
	return Matching.ProviderProfile{
		Specialties:       provider.Specialties,
		InsuranceAccepted: provider.InsuranceAccepted,
		Location:          provider.Location,
		Gender:            provider.Gender,
		VirtualAvailable:  provider.VirtualAvailable,
		InPersonAvailable: provider.InPersonAvailable,
	}
}

// Bookable reports whether the provider can take appointments at all.
// Providers with neither modality enabled never surface in matching.
func (provider *Provider) Bookable() bool {
	return provider.VirtualAvailable || provider.InPersonAvailable
}

func CreateBookedSlot(providerID uint, appointment Appointment) AppointmentSlot {
	return AppointmentSlot{ProviderID: providerID, IsAvailable: false, DateTime: appointment.DateTime, Appointment: appointment}
}

func CreateOpenSlot(providerID uint, dateTime string) AppointmentSlot {
	return AppointmentSlot{ProviderID: providerID, IsAvailable: true, DateTime: dateTime}
}
