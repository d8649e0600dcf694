package Controllers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"MindLine/Cache"
	"MindLine/Models"
	"MindLine/SSE"
	"MindLine/Waitlist"
	"MindLine/Whatsapp"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// MatchCache is shared across handlers, set from main after config load.
var MatchCache *Cache.MatchCache

// FetchWaitlist applies the filter set, and when a provider is selected
// returns that provider's ordered outreach list (own waitlist first, then
// fresh matches by urgency).
func FetchWaitlist(c *gin.Context) {
	var input struct {
		Filters    Waitlist.Filters `json:"filters"`
		ProviderID uint             `json:"provider_id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	groupID := practiceGroupID(c)

	var provider *Models.Provider
	if input.ProviderID != 0 {
		// An unfiltered provider view can come straight from cache. The
		// cache is keyed per practice group so one tenant never sees
		// another tenant's list for the same provider ID.
		if unfiltered(input.Filters) && MatchCache != nil {
			if entries, ok := MatchCache.Get(groupID, input.ProviderID); ok {
				c.JSON(http.StatusOK, entries)
				return
			}
		}
		provider = &Models.Provider{}
		if err := Models.DB.Where("practice_group_id = ?", groupID).
			First(provider, input.ProviderID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
			return
		}
	}

	db := getScopedDB(c)
	var entries []Models.WaitlistEntry
	if err := db.Model(&Models.WaitlistEntry{}).Preload("Patient").
		Order("position").Find(&entries).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := Waitlist.Query(entries, input.Filters, provider)

	if provider != nil && unfiltered(input.Filters) && MatchCache != nil {
		MatchCache.Put(groupID, provider.ID, result)
	}

	c.JSON(http.StatusOK, result)
}

func unfiltered(f Waitlist.Filters) bool {
	return f == (Waitlist.Filters{})
}

// JoinWaitlist is the public self-service entry point. New phone numbers
// get a patient record plus an OTP to verify; the entry stays invisible to
// outreach until verification.
func JoinWaitlist(c *gin.Context) {
	var input struct {
		PatientName     string `json:"patient_name"`
		PhoneNumber     string `json:"phone_number"`
		Diagnosis       string `json:"diagnosis"`
		Insurance       string `json:"insurance"`
		Urgency         string `json:"urgency"`
		HandRaised      bool   `json:"hand_raised"`
		ProviderID      *uint  `json:"provider_id"`
		PracticeGroupID uint   `json:"practice_group_id"`
		IsExisting      bool   `json:"is_existing"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong, transaction rolled back"})
		}
	}()

	if !strings.HasPrefix(input.PhoneNumber, "+") {
		input.PhoneNumber = "+1" + input.PhoneNumber
	}

	var patient Models.Patient
	isNew := false
	err := tx.Model(&Models.Patient{}).Where("phone = ?", input.PhoneNumber).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) && !input.IsExisting {
		patient.Name = input.PatientName
		patient.Phone = input.PhoneNumber
		patient.Diagnosis = input.Diagnosis
		patient.Insurance = input.Insurance
		patient.GenerateOTPToken(6)
		isNew = true
	} else if errors.Is(err, gorm.ErrRecordNotFound) && input.IsExisting {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone Number Not Registered, Try Joining As a New Patient"})
		return
	} else if err == nil && !input.IsExisting {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Phone Already Registered, Try Joining As an Existing Patient"})
		return
	} else if err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Every entry must belong to a practice group or the scoped dashboard
	// queries will never surface it.
	groupID := patient.PracticeGroupID
	if groupID == 0 && input.ProviderID != nil {
		var provider Models.Provider
		if err := tx.First(&provider, *input.ProviderID).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Provider not found"})
			return
		}
		groupID = provider.PracticeGroupID
	}
	if groupID == 0 {
		groupID = input.PracticeGroupID
	}
	if groupID == 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to determine the practice for this request, select a provider"})
		return
	}

	if isNew {
		patient.PracticeGroupID = groupID
		if err := tx.Create(&patient).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't Create Patient"})
			return
		}
	} else if patient.PracticeGroupID == 0 {
		if err := tx.Model(&Models.Patient{}).Where("id = ?", patient.ID).
			Update("practice_group_id", groupID).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Couldn't Update Patient"})
			return
		}
		patient.PracticeGroupID = groupID
	}

	var existing int64
	if err := tx.Model(&Models.WaitlistEntry{}).
		Where("patient_id = ? AND excluded = ?", patient.ID, false).
		Count(&existing).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to check existing entries"})
		return
	}
	if existing > 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient is already on the waitlist"})
		return
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = Models.UrgencyMedium
	}

	var position int64
	tx.Model(&Models.WaitlistEntry{}).Count(&position)

	entry := Models.WaitlistEntry{
		PatientID:       patient.ID,
		ProviderID:      input.ProviderID,
		HandRaised:      input.HandRaised,
		Urgency:         urgency,
		Position:        int(position) + 1,
		PracticeGroupID: patient.PracticeGroupID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx.Commit()

	if !patient.IsVerified {
		Whatsapp.SendMessage(patient.Phone, "Your verification code is: "+patient.OTP)
	}

	invalidateMatches()
	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{
		"message":    "Joined Waitlist Successfully",
		"entry_id":   entry.ID,
		"patient_id": patient.ID,
	})
}

func VerifyWaitlistPhoneNo(c *gin.Context) {
	var input struct {
		PatientID uint   `json:"patient_id"`
		OTP       string `json:"otp"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patient Models.Patient
	if err := Models.DB.First(&patient, input.PatientID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if patient.OTP != input.OTP {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Incorrect OTP"})
		return
	}

	if err := Models.DB.Model(&Models.Patient{}).Where("id = ?", patient.ID).
		Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Phone Number Confirmed"})
}

func ExcludeWaitlistEntry(c *gin.Context) {
	setExcluded(c, true)
}

func RestoreWaitlistEntry(c *gin.Context) {
	setExcluded(c, false)
}

func setExcluded(c *gin.Context, excluded bool) {
	var input struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Models.DB.Model(&Models.WaitlistEntry{}).Where("id = ?", input.ID).
		Update("excluded", excluded).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invalidateMatches()
	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Updated Successfully"})
}

func RaiseHand(c *gin.Context) {
	var input struct {
		ID     uint `json:"id"`
		Raised bool `json:"raised"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := Models.DB.Model(&Models.WaitlistEntry{}).Where("id = ?", input.ID).
		Update("hand_raised", input.Raised).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invalidateMatches()
	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Updated Successfully"})
}

func SetWaitlistUrgency(c *gin.Context) {
	var input struct {
		ID      uint   `json:"id"`
		Urgency string `json:"urgency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch input.Urgency {
	case Models.UrgencyHigh, Models.UrgencyMedium, Models.UrgencyLow:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown urgency"})
		return
	}
	if err := Models.DB.Model(&Models.WaitlistEntry{}).Where("id = ?", input.ID).
		Update("urgency", input.Urgency).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	invalidateMatches()
	SSE.Broadcaster.Broadcast("refresh")
	c.JSON(http.StatusOK, gin.H{"message": "Updated Successfully"})
}

func invalidateMatches() {
	if MatchCache != nil {
		MatchCache.InvalidateAll()
	}
}
