package Controllers

import (
	"errors"
	"log"
	"net/http"

	"MindLine/Matching"
	"MindLine/Models"
	"MindLine/Utils/Token"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"gorm.io/gorm"
)

func RegisterProvider(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		log.Println(err)
		c.String(http.StatusBadRequest, "Bad Request")
		c.Abort()
		return
	}

	user_id, _ := Token.ExtractTokenID(c)

	practice_group_id, err := Models.GetUserPracticeGroupID(user_id)
	if err != nil {
		log.Println(err)
	}
	input.PracticeGroupID = practice_group_id
	if input.PracticeGroupID != 0 {
		exists, err := Models.PracticeGroupExists(input.PracticeGroupID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check practice group"})
			return
		}
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Practice group ID does not exist"})
			return
		}
	}

	user := Models.User{}

	user.Username = input.Username
	user.Password = input.Password
	user.Permission = 2
	user.PracticeGroupID = input.PracticeGroupID
	_, err = user.SaveUser()

	if err != nil {
		log.Println(err)
		c.String(http.StatusBadRequest, "Failed To Register User")
		c.Abort()
		return
	}

	var provider Models.Provider

	if err := c.ShouldBindBodyWith(&provider, binding.JSON); err != nil {
		log.Println(err.Error())
		c.JSON(http.StatusBadRequest, err)
		return
	}
	provider.UserID = user.ID
	provider.Name = "Dr. " + input.Username
	provider.PracticeGroupID = input.PracticeGroupID
	if err := Models.DB.Model(&Models.Provider{}).Create(&provider).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusBadRequest, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Registered Successfully"})
}

func DeleteProvider(c *gin.Context) {
	var input struct {
		ID uint `json:"id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}

	var provider Models.Provider
	if err := Models.DB.Where("id = ?", input.ID).First(&provider).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve provider"})
		}
		return
	}

	var user Models.User
	if err := Models.DB.Where("id = ?", provider.UserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Associated user not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&provider).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete provider"})
		return
	}

	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Provider and associated user deleted successfully"})
}

func GetProviders(c *gin.Context) {
	var providers []Models.Provider
	if err := Models.DB.Model(&Models.Provider{}).Preload("Slots.Appointment").Find(&providers).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, providers)
}

// GetProvidersTrimmed returns the public directory view: name, photo,
// specialties and open slots only.
func GetProvidersTrimmed(c *gin.Context) {
	var providers []Models.Provider
	if err := Models.DB.Model(&Models.Provider{}).
		Preload("Slots", "is_available = ? AND held_by_job_id IS NULL", true).
		Find(&providers).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	type TrimmedProvider struct {
		ID                uint                     `json:"id"`
		Name              string                   `json:"name"`
		PhotoUrl          string                   `json:"photo_url"`
		Specialties       []string                 `json:"specialties"`
		Location          string                   `json:"location"`
		VirtualAvailable  bool                     `json:"virtual_available"`
		InPersonAvailable bool                     `json:"in_person_available"`
		Slots             []Models.AppointmentSlot `json:"slots"`
	}

	var output []TrimmedProvider
	for _, provider := range providers {
		if !provider.Bookable() {
			continue
		}
		output = append(output, TrimmedProvider{
			ID:                provider.ID,
			Name:              provider.Name,
			PhotoUrl:          provider.PhotoUrl,
			Specialties:       provider.Specialties,
			Location:          provider.Location,
			VirtualAvailable:  provider.VirtualAvailable,
			InPersonAvailable: provider.InPersonAvailable,
			Slots:             provider.Slots,
		})
	}

	c.JSON(http.StatusOK, output)
}

func GetProviderSchedule(c *gin.Context) {
	user_id, err := Token.ExtractTokenID(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var provider Models.Provider

	if err := Models.DB.Model(&Models.Provider{}).Where("user_id = ?", user_id).
		Preload("Slots.Appointment").First(&provider).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, provider)
}

func AddProviderSlots(c *gin.Context) {
	var input struct {
		DateTimes []string `json:"date_times"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	user_id, err := Token.ExtractTokenID(c)

	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var provider Models.Provider

	if err := Models.DB.Model(&Models.Provider{}).Where("user_id = ?", user_id).
		Preload("Slots").First(&provider).Error; err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	for _, dateTime := range input.DateTimes {
		slot := Models.CreateOpenSlot(provider.ID, dateTime)
		if err := Models.DB.Create(&slot).Error; err != nil {
			log.Println(err)
			c.JSON(http.StatusBadRequest, err)
			c.Abort()
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Requested Successfully",
	})
}

// EvaluateProviderMatch runs the match evaluator for one provider/patient
// pair, the booking page uses it to explain why a provider surfaced.
func EvaluateProviderMatch(c *gin.Context) {
	var input struct {
		ProviderID uint `json:"provider_id"`
		PatientID  uint `json:"patient_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var provider Models.Provider
	if err := Models.DB.First(&provider, input.ProviderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}
	var patient Models.Patient
	if err := Models.DB.First(&patient, input.PatientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Patient not found"})
		return
	}

	result := Matching.Evaluate(provider.Profile(), patient.Needs())
	c.JSON(http.StatusOK, result)
}
