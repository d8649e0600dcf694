package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dispatch strategies.
const (
	StrategyWaterfall = "waterfall"
	StrategyBlast     = "blast"
)

// Job statuses. Transitions are one-directional; a retry marks the
// errored job retried (terminal, ignored by the resume sweep) and carries
// live status on a fresh job.
const (
	JobStatusIdle      = "idle"
	JobStatusSending   = "sending"
	JobStatusSent      = "sent"
	JobStatusError     = "error"
	JobStatusCancelled = "cancelled"
	JobStatusRetried   = "retried"
)

// NotificationJob is a persisted dispatch run. Progress and NextIndex are
// written through on every send so a restart can pick up where a waterfall
// left off instead of silently abandoning the queue.
type NotificationJob struct {
	gorm.Model
	Reference       string                      `json:"reference" gorm:"uniqueIndex"`
	Strategy        string                      `json:"strategy"`
	Template        string                      `json:"template"`
	Status          string                      `json:"status"`
	Sent            int                         `json:"sent"`
	Total           int                         `json:"total"`
	IntervalMinutes int                         `json:"interval_minutes"`
	NextIndex       int                         `json:"next_index"`
	FailedNames     datatypes.JSONSlice[string] `json:"failed_names"`
	AcceptedByID    *uint                       `json:"accepted_by_id" gorm:"default:null"`
	ProviderID      *uint                       `json:"provider_id" gorm:"default:null"`
	SlotID          *uint                       `json:"slot_id" gorm:"default:null"`
	Recipients      []NotificationRecipient     `json:"recipients"`
	PracticeGroupID uint                        `json:"practice_group_id"`
}

// NotificationRecipient is one target of a job, in send order.
type NotificationRecipient struct {
	gorm.Model
	NotificationJobID uint       `json:"notification_job_id"`
	PatientID         uint       `json:"patient_id"`
	Name              string     `json:"name"`
	Phone             string     `json:"phone"`
	Position          int        `json:"position"`
	SentAt            *time.Time `json:"sent_at" gorm:"default:null"`
	Failed            bool       `json:"failed"`
}

type NotificationRequest struct {
	Tokens []string `json:"tokens"` // Multiple device tokens
	Title  string   `json:"title"`  // Notification title
	Body   string   `json:"body"`   // Notification body
}

type ResponseMessage struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
