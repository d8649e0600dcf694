package Models

import (
	"gorm.io/gorm"
)

// Urgency values, most urgent first.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

// WaitlistEntry is a patient waiting for an opening. ProviderID is set when
// the patient is already on a specific provider's waitlist; entries are
// soft-deleted through Excluded so outreach history stays intact.
type WaitlistEntry struct {
	gorm.Model
	PatientID       uint     `json:"patient_id"`
	Patient         Patient  `json:"patient"`
	ProviderID      *uint    `json:"provider_id" gorm:"default:null"`
	HandRaised      bool     `json:"hand_raised"`
	Urgency         string   `json:"urgency"`
	MatchScore      float64  `json:"match_score"`
	Position        int      `json:"position"`
	Excluded        bool     `json:"excluded"`
	Notes           string   `json:"notes"`
	PracticeGroupID uint     `json:"practice_group_id"`
}

// UrgencyRank orders urgencies for sorting, lower is more urgent.
func (entry *WaitlistEntry) UrgencyRank() int {
	switch entry.Urgency {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	case UrgencyLow:
		return 2
	}
	return 3
}

// OnProviderWaitlist reports whether the entry already belongs to the
// given provider's waitlist.
func (entry *WaitlistEntry) OnProviderWaitlist(providerID uint) bool {
	return entry.ProviderID != nil && *entry.ProviderID == providerID
}
