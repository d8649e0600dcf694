package Controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"MindLine/Models"

	"github.com/gin-gonic/gin"
)

func FetchPatients(c *gin.Context) {
	db := getScopedDB(c)
	var patients []Models.Patient
	if err := db.Model(&Models.Patient{}).Preload("History").Find(&patients).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, patients)
}

func CreatePatient(c *gin.Context) {
	var input Models.Patient

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Phone != "" && !strings.HasPrefix(input.Phone, "+") {
		input.Phone = "+1" + input.Phone
	}
	input.IsVerified = true

	groupID := practiceGroupID(c)
	if groupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: Practice Group Not Set"})
		return
	}
	input.PracticeGroupID = groupID

	if err := Models.DB.Create(&input).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient created successfully", "patient_id": input.ID})
}

func UpdatePatient(c *gin.Context) {
	var input struct {
		ID                uint     `json:"id"`
		Name              string   `json:"name"`
		Phone             string   `json:"phone"`
		Email             string   `json:"email"`
		Gender            string   `json:"gender"`
		Age               int      `json:"age"`
		Diagnosis         string   `json:"diagnosis"`
		AllDiagnoses      []string `json:"all_diagnoses"`
		Insurance         string   `json:"insurance"`
		Location          string   `json:"location"`
		Distance          float64  `json:"distance"`
		PreferredModality string   `json:"preferred_modality"`
		PreferredGender   string   `json:"preferred_gender"`
		Notes             string   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	var patient Models.Patient
	if err := Models.DB.Model(&Models.Patient{}).Where("id = ?", input.ID).Find(&patient).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Phone != "" && !strings.HasPrefix(input.Phone, "+") {
		input.Phone = "+1" + input.Phone
	}

	patient.Name = input.Name
	patient.Phone = input.Phone
	patient.Email = input.Email
	patient.Gender = input.Gender
	patient.Age = input.Age
	patient.Diagnosis = input.Diagnosis
	patient.AllDiagnoses = input.AllDiagnoses
	patient.Insurance = input.Insurance
	patient.Location = input.Location
	patient.Distance = input.Distance
	patient.PreferredModality = input.PreferredModality
	patient.PreferredGender = input.PreferredGender
	patient.Notes = input.Notes

	if err := Models.DB.Save(&patient).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully"})
}

func DeletePatient(c *gin.Context) {
	var input struct {
		PatientID uint `json:"patient_id"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, err)
		return
	}

	tx := Models.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Delete(&Models.Patient{}, "id = ?", input.PatientID).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, err)
		return
	}

	// A deleted patient cannot stay on any waitlist.
	if err := tx.Model(&Models.WaitlistEntry{}).Where("patient_id = ?", input.PatientID).
		Update("excluded", true).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, err)
		return
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Patient Deleted Successfully",
	})
}

func GetPatientIdByPhone(c *gin.Context) {
	var input struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !strings.HasPrefix(input.PhoneNumber, "+") {
		input.PhoneNumber = "+1" + input.PhoneNumber
	}

	var patient Models.Patient
	if err := Models.DB.Where("phone = ?", input.PhoneNumber).First(&patient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No patient found with this phone number"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"patient_id": patient.ID})
}

func FetchPatientFilesURLs(c *gin.Context) {
	type FileInfo struct {
		Name string  `json:"name"`
		Size float64 `json:"size"`
	}

	var FileUrls []FileInfo
	var input struct {
		ID uint `json:"id"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := os.ReadDir(fmt.Sprintf("./PatientRecords/%v/", input.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	for _, entry := range entries {
		fileInfo, err := entry.Info()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if fileInfo.Name() != ".DS_Store" {
			FileUrls = append(FileUrls, FileInfo{
				Name: entry.Name(),
				Size: float64(fileInfo.Size()),
			})
		}
	}

	c.JSON(http.StatusOK, FileUrls)
}

func UploadPatientRecord(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to parse form"})
		return
	}

	patientID := c.PostForm("id")
	if patientID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Patient ID is required"})
		return
	}

	patientDir := fmt.Sprintf("./PatientRecords/%s/", patientID)
	if err := os.MkdirAll(patientDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create patient directory"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to retrieve files from form data"})
		return
	}

	files := form.File["files"]
	for _, file := range files {
		filePath := fmt.Sprintf("%s%s", patientDir, file.Filename)
		out, err := os.Create(filePath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create the file"})
			return
		}
		defer out.Close()

		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to open the file"})
			return
		}
		defer src.Close()

		if _, err := io.Copy(out, src); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save the file"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Files uploaded successfully"})
}

func DeletePatientRecord(c *gin.Context) {
	var input struct {
		ID       uint   `json:"id"`
		FileName string `json:"file_name"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	filePath := fmt.Sprintf("./PatientRecords/%v/%s", input.ID, input.FileName)

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	if err := os.Remove(filePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
