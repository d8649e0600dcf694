package Controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"MindLine/Dispatch"
	"MindLine/FirebaseMessaging"
	"MindLine/Models"
	"MindLine/SSE"
	"MindLine/Utils/Token"
	"MindLine/Whatsapp"

	"github.com/gin-gonic/gin"
)

// DispatchRunner is shared across handlers, set from main.
var DispatchRunner *Dispatch.Runner

// StartDispatch creates and launches a notification job for an open slot.
// Recipient order is the order of the submitted patient IDs, which the
// dashboard builds from the filtered waitlist view.
func StartDispatch(c *gin.Context) {
	var input struct {
		PatientIDs      []uint `json:"patient_ids" binding:"required"`
		Template        string `json:"template" binding:"required"`
		Strategy        string `json:"strategy" binding:"required"`
		IntervalMinutes int    `json:"interval_minutes"`
		ProviderID      *uint  `json:"provider_id"`
		SlotID          *uint  `json:"slot_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Strategy != Models.StrategyWaterfall && input.Strategy != Models.StrategyBlast {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unknown strategy %q", input.Strategy)})
		return
	}

	interval := input.IntervalMinutes
	if interval <= 0 {
		interval = DefaultWaterfallInterval
	}

	var recipients []Dispatch.Recipient
	for _, patientID := range input.PatientIDs {
		var patient Models.Patient
		if err := Models.DB.First(&patient, patientID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Patient %d not found", patientID)})
			return
		}
		recipients = append(recipients, Dispatch.Recipient{
			PatientID: patient.ID,
			Name:      patient.Name,
			Phone:     patient.Phone,
		})
	}

	if input.SlotID != nil {
		// A slot held by another active job cannot be offered twice.
		if err := Models.DB.Model(&Models.AppointmentSlot{}).
			Where("id = ? AND is_available = ? AND held_by_job_id IS NULL", *input.SlotID, true).
			First(&Models.AppointmentSlot{}).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot is not available"})
			return
		}
	}

	job := &Models.NotificationJob{
		Strategy:        input.Strategy,
		Template:        input.Template,
		IntervalMinutes: interval,
		ProviderID:      input.ProviderID,
		SlotID:          input.SlotID,
		PracticeGroupID: practiceGroupID(c),
	}

	if err := DispatchRunner.StartJob(job, recipients); err != nil {
		var missing *Dispatch.MissingPhoneError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Some recipients have no phone number on file",
				"missing": missing.Names,
			})
			return
		}
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Mark the slot as held while the offer is out.
	if input.SlotID != nil {
		Models.DB.Model(&Models.AppointmentSlot{}).Where("id = ?", *input.SlotID).
			Update("held_by_job_id", job.ID)
	}

	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{
		"message":   "Dispatch Started",
		"reference": job.Reference,
	})
}

// DefaultWaterfallInterval is overridden from config in main.
var DefaultWaterfallInterval = 5

func FetchDispatchStatus(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference is required"})
		return
	}

	var job Models.NotificationJob
	if err := Models.DB.Where("reference = ?", reference).
		Preload("Recipients").First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}

func FetchDispatchHistory(c *gin.Context) {
	db := getScopedDB(c)
	var jobs []Models.NotificationJob
	if err := db.Model(&Models.NotificationJob{}).Order("created_at desc").
		Limit(100).Find(&jobs).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// CancelDispatch stops a running waterfall between sends. Blast jobs are
// fire-and-forget and cannot be cancelled.
func CancelDispatch(c *gin.Context) {
	var input struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var job Models.NotificationJob
	if err := Models.DB.Where("reference = ?", input.Reference).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.Strategy == Models.StrategyBlast {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Blast dispatches cannot be cancelled"})
		return
	}

	if !DispatchRunner.Cancel(input.Reference) {
		// Not in memory: mark the persisted row so the resume sweep
		// doesn't pick it back up.
		if job.Status == Models.JobStatusSending {
			Models.DB.Model(&Models.NotificationJob{}).Where("id = ?", job.ID).
				Update("status", Models.JobStatusCancelled)
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Job is not running"})
			return
		}
	}

	releaseHeldSlot(&job)
	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Cancelled Successfully"})
}

// RetryDispatch re-runs an errored job against only its failed
// recipients, resetting status back to sending.
func RetryDispatch(c *gin.Context) {
	var input struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var job Models.NotificationJob
	if err := Models.DB.Where("reference = ?", input.Reference).
		Preload("Recipients").First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.Status != Models.JobStatusError {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only errored jobs can be retried"})
		return
	}

	var recipients []Dispatch.Recipient
	for _, row := range job.Recipients {
		if row.Failed {
			recipients = append(recipients, Dispatch.Recipient{
				PatientID: row.PatientID,
				Name:      row.Name,
				Phone:     row.Phone,
			})
		}
	}
	if len(recipients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No failed recipients to retry"})
		return
	}

	retry := &Models.NotificationJob{
		Strategy:        job.Strategy,
		Template:        job.Template,
		IntervalMinutes: job.IntervalMinutes,
		ProviderID:      job.ProviderID,
		SlotID:          job.SlotID,
		PracticeGroupID: job.PracticeGroupID,
	}
	if err := DispatchRunner.StartJob(retry, recipients); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The original stays terminal so the resume sweep never re-runs it;
	// only the new job carries live status.
	Models.DB.Model(&Models.NotificationJob{}).Where("id = ?", job.ID).
		Update("status", Models.JobStatusRetried)

	c.JSON(http.StatusOK, gin.H{"message": "Retry Started", "reference": retry.Reference})
}

// BookHeldSlot turns an accepted offer into an appointment: the slot
// closes, the patient leaves the waitlist, the rest of the waterfall is
// cancelled and staff devices get a push.
func BookHeldSlot(c *gin.Context) {
	var input struct {
		Reference string `json:"reference" binding:"required"`
		PatientID uint   `json:"patient_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var job Models.NotificationJob
	if err := Models.DB.Where("reference = ?", input.Reference).First(&job).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}
	if job.SlotID == nil || job.ProviderID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Job has no slot attached"})
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var slot Models.AppointmentSlot
	if err := tx.First(&slot, *job.SlotID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found"})
		return
	}
	if !slot.IsAvailable {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot already booked"})
		return
	}

	var patient Models.Patient
	if err := tx.First(&patient, input.PatientID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	var provider Models.Provider
	if err := tx.First(&provider, *job.ProviderID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}

	appointment := Models.Appointment{
		DateTime:          slot.DateTime,
		AppointmentSlotID: slot.ID,
		ProviderID:        provider.ID,
		ProviderName:      provider.Name,
		PatientID:         patient.ID,
		PatientName:       patient.Name,
		PracticeGroupID:   job.PracticeGroupID,
	}
	if err := tx.Create(&appointment).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create appointment"})
		return
	}

	if err := tx.Model(&Models.AppointmentSlot{}).Where("id = ?", slot.ID).
		Updates(map[string]interface{}{"is_available": false, "held_by_job_id": nil}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update slot"})
		return
	}

	if err := tx.Model(&Models.WaitlistEntry{}).Where("patient_id = ?", patient.ID).
		Update("excluded", true).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update waitlist"})
		return
	}

	if err := tx.Model(&Models.NotificationJob{}).Where("id = ?", job.ID).
		Update("accepted_by_id", patient.ID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to update job"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	DispatchRunner.Cancel(job.Reference)

	c.JSON(http.StatusOK, gin.H{"message": "Appointment booked successfully", "appointment_id": appointment.ID})

	Whatsapp.SendMessage(patient.Phone, fmt.Sprintf(
		"Your Appointment At %s With %s Has Been Confirmed", slot.DateTime, provider.Name))

	user_id, err := Token.ExtractTokenID(c)
	if err != nil {
		log.Println(err)
	}
	fcms, _ := Models.GetGroupFCMsByID(user_id)
	if len(fcms) > 0 {
		FirebaseMessaging.SendMessage(Models.NotificationRequest{
			Tokens: fcms,
			Title:  "A Slot Has Been Filled",
			Body:   fmt.Sprintf("%s booked %s with %s", patient.Name, slot.DateTime, provider.Name),
		})
	}
	invalidateMatches()
	SSE.Broadcaster.Broadcast("refresh")
}

func releaseHeldSlot(job *Models.NotificationJob) {
	if job.SlotID != nil {
		Models.DB.Model(&Models.AppointmentSlot{}).
			Where("id = ? AND held_by_job_id = ?", *job.SlotID, job.ID).
			Update("held_by_job_id", nil)
	}
}
