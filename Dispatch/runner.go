package Dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"MindLine/Models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Runner persists notification jobs and executes them with a Dispatcher.
// Every send is written through to the job row, so a waterfall interrupted
// by a restart is resumed by the cron sweep instead of being abandoned.
type Runner struct {
	DB        *gorm.DB
	Messenger Messenger
	Clock     Clock
	// OnEvent fires on job state changes so the HTTP layer can push
	// refreshes to dashboards without the Runner knowing about SSE.
	OnEvent func(reference string)

	mu     sync.Mutex
	active map[string]*activeJob
}

type activeJob struct {
	cancel context.CancelFunc
	accept chan uint
	phones map[string]uint // phone -> patient ID, for inbound acceptance
}

func NewRunner(db *gorm.DB, messenger Messenger, clock Clock) *Runner {
	return &Runner{
		DB:        db,
		Messenger: messenger,
		Clock:     clock,
		active:    make(map[string]*activeJob),
	}
}

// StartJob persists a new job and launches it in the background. The
// phone precondition is checked before anything is written, so an invalid
// recipient list never produces a job row.
func (runner *Runner) StartJob(job *Models.NotificationJob, recipients []Recipient) error {
	if err := validatePhones(recipients); err != nil {
		return err
	}

	job.Reference = uuid.NewString()
	job.Status = Models.JobStatusSending
	job.Sent = 0
	job.Total = len(recipients)
	for i, r := range recipients {
		job.Recipients = append(job.Recipients, Models.NotificationRecipient{
			PatientID: r.PatientID,
			Name:      r.Name,
			Phone:     r.Phone,
			Position:  i,
		})
	}

	if err := runner.DB.Create(job).Error; err != nil {
		return fmt.Errorf("failed to persist notification job: %w", err)
	}

	go runner.run(job, recipients, 0)
	return nil
}

// Resume relaunches a persisted waterfall from its NextIndex. Used by the
// cron sweep after a restart.
func (runner *Runner) Resume(job *Models.NotificationJob) {
	if job.Strategy != Models.StrategyWaterfall || job.Status != Models.JobStatusSending {
		return
	}

	runner.mu.Lock()
	_, alreadyRunning := runner.active[job.Reference]
	runner.mu.Unlock()
	if alreadyRunning {
		return
	}

	var rows []Models.NotificationRecipient
	if err := runner.DB.Where("notification_job_id = ?", job.ID).Order("position").Find(&rows).Error; err != nil {
		log.Printf("Failed to load recipients for job %s: %v", job.Reference, err)
		return
	}
	recipients := make([]Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, Recipient{PatientID: row.PatientID, Name: row.Name, Phone: row.Phone})
	}

	log.Printf("Resuming waterfall %s at position %d of %d", job.Reference, job.NextIndex, job.Total)
	go runner.run(job, recipients, job.NextIndex)
}

// Cancel stops a running waterfall between steps. Blast jobs cannot be
// cancelled once issued.
func (runner *Runner) Cancel(reference string) bool {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	if job, ok := runner.active[reference]; ok && job.cancel != nil {
		job.cancel()
		return true
	}
	return false
}

// Accept records that the patient behind the given phone number took the
// offered slot and stops the rest of the waterfall. Returns the job
// reference when a pending offer matched.
func (runner *Runner) Accept(phone string) (string, bool) {
	runner.mu.Lock()
	defer runner.mu.Unlock()
	for reference, job := range runner.active {
		if patientID, ok := job.phones[phone]; ok {
			select {
			case job.accept <- patientID:
				return reference, true
			default:
			}
		}
	}
	return "", false
}

func (runner *Runner) run(job *Models.NotificationJob, recipients []Recipient, startIndex int) {
	ctx := context.Background()
	var cancel context.CancelFunc

	entry := &activeJob{accept: make(chan uint, 1), phones: make(map[string]uint)}
	if job.Strategy == Models.StrategyWaterfall {
		ctx, cancel = context.WithCancel(ctx)
		entry.cancel = cancel
		for _, r := range recipients {
			entry.phones[r.Phone] = r.PatientID
		}
	}

	runner.mu.Lock()
	runner.active[job.Reference] = entry
	runner.mu.Unlock()
	defer func() {
		runner.mu.Lock()
		delete(runner.active, job.Reference)
		runner.mu.Unlock()
	}()

	dispatcher := NewDispatcher(runner.Messenger, runner.Clock)
	opts := Options{
		Interval: time.Duration(job.IntervalMinutes) * time.Minute,
		Accept:   entry.accept,
		OnSent: func(index int, r Recipient) {
			now := time.Now()
			runner.DB.Model(&Models.NotificationRecipient{}).
				Where("notification_job_id = ? AND position = ?", job.ID, index).
				Update("sent_at", &now)
			runner.DB.Model(&Models.NotificationJob{}).Where("id = ?", job.ID).
				Update("next_index", index+1)
		},
		OnProgress: func(p Progress) {
			runner.DB.Model(&Models.NotificationJob{}).Where("id = ?", job.ID).
				Update("sent", p.Sent)
			runner.notify(job.Reference)
		},
	}

	result, err := dispatcher.Dispatch(ctx, recipients, job.Template, job.Strategy, startIndex, opts)
	if err != nil {
		log.Printf("Dispatch %s failed: %v", job.Reference, err)
	}

	updates := map[string]interface{}{
		"status": result.Status,
		"sent":   result.Sent,
	}
	if len(result.Failed) > 0 {
		updates["failed_names"] = datatypes.NewJSONSlice(result.Failed)
	}
	if result.AcceptedByID != nil {
		updates["accepted_by_id"] = *result.AcceptedByID
	}
	if err := runner.DB.Model(&Models.NotificationJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		log.Printf("Failed to record final state for job %s: %v", job.Reference, err)
	}

	for _, name := range result.Failed {
		runner.DB.Model(&Models.NotificationRecipient{}).
			Where("notification_job_id = ? AND name = ?", job.ID, name).
			Update("failed", true)
	}

	runner.notify(job.Reference)
}

func (runner *Runner) notify(reference string) {
	if runner.OnEvent != nil {
		runner.OnEvent(reference)
	}
}
