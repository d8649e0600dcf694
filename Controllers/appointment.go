package Controllers

import (
	"fmt"
	"log"
	"net/http"

	"MindLine/FirebaseMessaging"
	"MindLine/Models"
	"MindLine/SSE"
	"MindLine/Utils/Token"
	"MindLine/Whatsapp"

	"github.com/gin-gonic/gin"
)

func FetchAppointmentsByPatientID(c *gin.Context) {
	var input struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	type AppointmentResponse struct {
		ID           uint   `json:"id"`
		DateTime     string `json:"date_time"`
		ProviderName string `json:"provider_name"`
		IsCompleted  bool   `json:"is_completed"`
	}

	var appointments []AppointmentResponse
	if err := Models.DB.Model(&Models.Appointment{}).
		Select("id, date_time, provider_name, is_completed").
		Where("patient_id = ?", input.ID).
		Find(&appointments).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

func MarkAppointmentAsCompleted(c *gin.Context) {
	setAppointmentCompleted(c, true)
}

func UnmarkAppointmentAsCompleted(c *gin.Context) {
	setAppointmentCompleted(c, false)
}

func setAppointmentCompleted(c *gin.Context, completed bool) {
	var input struct {
		ID uint `json:"ID"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, err)
		return
	}

	if err := Models.DB.Model(&Models.Appointment{}).Where("id = ?", input.ID).
		Update("is_completed", completed).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked Successfully"})
}

// CancelAppointment frees the slot, notifies the patient and pushes to
// staff devices.
func CancelAppointment(c *gin.Context) {
	var input struct {
		ID uint `json:"ID"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, err)
		c.Abort()
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var appointment Models.Appointment
	if err := tx.First(&appointment, input.ID).Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusBadRequest, err)
		c.Abort()
		return
	}

	var patient Models.Patient
	tx.Model(&Models.Patient{}).Where("id = ?", appointment.PatientID).First(&patient)

	if err := tx.Model(&Models.AppointmentSlot{}).Where("id = ?", appointment.AppointmentSlotID).
		Update("is_available", true).Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusBadRequest, err)
		c.Abort()
		return
	}

	if err := tx.Delete(&Models.Appointment{}, "id = ?", appointment.ID).Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusBadRequest, err)
		c.Abort()
		return
	}

	if err := tx.Commit().Error; err != nil {
		log.Println(err)
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted Successfully"})

	if patient.Phone != "" {
		Whatsapp.SendMessage(patient.Phone, "We're sorry. Your appointment has been cancelled, please contact the practice to reschedule")
		user_id, err := Token.ExtractTokenID(c)
		if err != nil {
			log.Println(err)
		}
		fcms, _ := Models.GetGroupFCMsByID(user_id)
		if len(fcms) > 0 {
			FirebaseMessaging.SendMessage(Models.NotificationRequest{
				Tokens: fcms,
				Title:  "Appointment Cancelled",
				Body:   fmt.Sprintf("The Appointment With %s, At %s Has Been Cancelled", patient.Name, appointment.DateTime),
			})
		}
	}
	invalidateMatches()
	SSE.Broadcaster.Broadcast("refresh")
}
