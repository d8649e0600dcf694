package Models

import (
	"math/rand"

	"MindLine/Matching"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Patient struct {
	gorm.Model
	Name              string                       `json:"name"`
	Phone             string                       `json:"phone"`
	Email             string                       `json:"email"`
	Gender            string                       `json:"gender"`
	Age               int                          `json:"age"`
	Diagnosis         string                       `json:"diagnosis"`
	AllDiagnoses      datatypes.JSONSlice[string]  `json:"all_diagnoses"`
	Insurance         string                       `json:"insurance"`
	Location          string                       `json:"location"`
	Distance          float64                      `json:"distance"`
	PreferredModality string                       `json:"preferred_modality"`
	PreferredGender   string                       `json:"preferred_gender"`
	Notes             string                       `json:"notes"`
	History           []Appointment                `json:"history"`
	OTP               string                       `json:"otp"`
	IsVerified        bool                         `json:"is_verified"`
	PracticeGroupID   uint                         `json:"practice_group_id"`
}

// Needs shapes the patient for the match evaluator.
func (patient *Patient) Needs() Matching.PatientNeeds {
	return Matching.PatientNeeds{
		Diagnosis:         patient.Diagnosis,
		AllDiagnoses:      patient.AllDiagnoses,
		Insurance:         patient.Insurance,
		Location:          patient.Location,
		PreferredModality: patient.PreferredModality,
		PreferredGender:   patient.PreferredGender,
	}
}

func (patient *Patient) GenerateOTPToken(count int) {
	var possibleCharacters = []rune("1234567890")

	token := make([]rune, count)
	for index := range token {
		token[index] = possibleCharacters[rand.Intn(len(possibleCharacters))]
	}
	patient.OTP = string(token)
}
