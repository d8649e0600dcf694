package Matching

import (
	"fmt"
	"strings"
)

// MostMajorInsurance is the wildcard a provider can list to accept any plan.
const MostMajorInsurance = "most major insurance"

type ProviderProfile struct {
	Specialties       []string `json:"specialties"`
	InsuranceAccepted []string `json:"insurance_accepted"`
	Location          string   `json:"location"`
	Gender            string   `json:"gender"`
	VirtualAvailable  bool     `json:"virtual_available"`
	InPersonAvailable bool     `json:"in_person_available"`
}

type PatientNeeds struct {
	Diagnosis         string   `json:"diagnosis"`
	AllDiagnoses      []string `json:"all_diagnoses"`
	Insurance         string   `json:"insurance"`
	Location          string   `json:"location"`
	PreferredModality string   `json:"preferred_modality"`
	PreferredGender   string   `json:"preferred_gender"`
}

type Result struct {
	Matches bool     `json:"matches"`
	Reasons []string `json:"reasons"`
}

// Diagnoses returns every condition the patient reports, whether it came
// in as a single diagnosis or a list.
func (patient *PatientNeeds) Diagnoses() []string {
	if len(patient.AllDiagnoses) > 0 {
		return patient.AllDiagnoses
	}
	if patient.Diagnosis != "" {
		return []string{patient.Diagnosis}
	}
	return nil
}

// Evaluate scores a patient against a provider. Diagnosis and insurance
// are the hard gates; modality and gender preference only contribute
// reasons. Diagnosis comparison is a case-insensitive substring match in
// either direction, so "anxiety" pairs with "Anxiety Disorders".
func Evaluate(provider ProviderProfile, patient PatientNeeds) Result {
	var result Result

	diagnosisMatch := false
	for _, diagnosis := range patient.Diagnoses() {
		for _, specialty := range provider.Specialties {
			if fuzzyContains(specialty, diagnosis) {
				diagnosisMatch = true
				result.Reasons = append(result.Reasons, fmt.Sprintf("Treats %s", diagnosis))
				break
			}
		}
		if diagnosisMatch {
			break
		}
	}

	insuranceMatch := insuranceAccepted(provider, patient.Insurance)
	if insuranceMatch {
		if patient.Insurance != "" {
			result.Reasons = append(result.Reasons, fmt.Sprintf("Accepts %s", patient.Insurance))
		} else {
			result.Reasons = append(result.Reasons, "Accepts most major insurance")
		}
	}

	if modalitySupported(provider, patient.PreferredModality) {
		if patient.PreferredModality != "" {
			result.Reasons = append(result.Reasons, fmt.Sprintf("Offers %s sessions", patient.PreferredModality))
		}
	} else {
		result.Reasons = append(result.Reasons, fmt.Sprintf("Does not offer %s sessions", patient.PreferredModality))
	}

	if patient.PreferredGender != "" && provider.Gender != "" {
		if strings.EqualFold(patient.PreferredGender, provider.Gender) {
			result.Reasons = append(result.Reasons, "Matches gender preference")
		}
	}

	result.Matches = diagnosisMatch && insuranceMatch
	return result
}

func insuranceAccepted(provider ProviderProfile, insurance string) bool {
	for _, accepted := range provider.InsuranceAccepted {
		if strings.EqualFold(accepted, MostMajorInsurance) {
			return true
		}
		if insurance != "" && strings.EqualFold(accepted, insurance) {
			return true
		}
	}
	return false
}

func modalitySupported(provider ProviderProfile, modality string) bool {
	switch strings.ToLower(modality) {
	case "":
		return true
	case "virtual", "telehealth":
		return provider.VirtualAvailable
	case "in-person", "in person":
		return provider.InPersonAvailable
	}
	return false
}

func fuzzyContains(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
