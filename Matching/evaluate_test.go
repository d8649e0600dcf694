package Matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func anxietyProvider() ProviderProfile {
	return ProviderProfile{
		Specialties:       []string{"Anxiety Disorders", "Depression", "PTSD"},
		InsuranceAccepted: []string{"Blue Cross", "Aetna"},
		Location:          "Ann Arbor, MI",
		Gender:            "female",
		VirtualAvailable:  true,
		InPersonAvailable: false,
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		provider ProviderProfile
		patient  PatientNeeds
		matches  bool
	}{
		{
			name:     "diagnosis and insurance match",
			provider: anxietyProvider(),
			patient:  PatientNeeds{Diagnosis: "Anxiety", Insurance: "Aetna"},
			matches:  true,
		},
		{
			name:     "case insensitive diagnosis",
			provider: anxietyProvider(),
			patient:  PatientNeeds{Diagnosis: "depression", Insurance: "blue cross"},
			matches:  true,
		},
		{
			name:     "diagnosis list matches when single field empty",
			provider: anxietyProvider(),
			patient:  PatientNeeds{AllDiagnoses: []string{"Insomnia", "PTSD"}, Insurance: "Aetna"},
			matches:  true,
		},
		{
			name:     "insurance mismatch blocks",
			provider: anxietyProvider(),
			patient:  PatientNeeds{Diagnosis: "Anxiety", Insurance: "Cigna"},
			matches:  false,
		},
		{
			name:     "diagnosis mismatch blocks",
			provider: anxietyProvider(),
			patient:  PatientNeeds{Diagnosis: "Eating Disorder", Insurance: "Aetna"},
			matches:  false,
		},
		{
			name: "wildcard insurance accepts anything",
			provider: ProviderProfile{
				Specialties:       []string{"Anxiety"},
				InsuranceAccepted: []string{"Most Major Insurance"},
			},
			patient: PatientNeeds{Diagnosis: "Anxiety", Insurance: "Obscure Regional Plan"},
			matches: true,
		},
		{
			name:     "unpreferred modality is not a gate",
			provider: anxietyProvider(),
			patient:  PatientNeeds{Diagnosis: "Anxiety", Insurance: "Aetna", PreferredModality: "in-person"},
			matches:  true,
		},
		{
			name:     "no diagnoses at all",
			provider: anxietyProvider(),
			patient:  PatientNeeds{Insurance: "Aetna"},
			matches:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.provider, tt.patient)
			assert.Equal(t, tt.matches, result.Matches)
		})
	}
}

func TestEvaluateReasons(t *testing.T) {
	result := Evaluate(anxietyProvider(), PatientNeeds{
		Diagnosis:         "Anxiety",
		Insurance:         "Aetna",
		PreferredModality: "virtual",
		PreferredGender:   "Female",
	})

	assert.True(t, result.Matches)
	assert.Contains(t, result.Reasons, "Treats Anxiety")
	assert.Contains(t, result.Reasons, "Accepts Aetna")
	assert.Contains(t, result.Reasons, "Offers virtual sessions")
	assert.Contains(t, result.Reasons, "Matches gender preference")
}

func TestEvaluateUnsupportedModalityStillMatches(t *testing.T) {
	result := Evaluate(anxietyProvider(), PatientNeeds{
		Diagnosis:         "PTSD",
		Insurance:         "Blue Cross",
		PreferredModality: "in-person",
	})

	assert.True(t, result.Matches)
	assert.Contains(t, result.Reasons, "Does not offer in-person sessions")
}

func TestDiagnosesAccessor(t *testing.T) {
	single := PatientNeeds{Diagnosis: "OCD"}
	assert.Equal(t, []string{"OCD"}, single.Diagnoses())

	list := PatientNeeds{Diagnosis: "OCD", AllDiagnoses: []string{"OCD", "Anxiety"}}
	assert.Equal(t, []string{"OCD", "Anxiety"}, list.Diagnoses())

	none := PatientNeeds{}
	assert.Empty(t, none.Diagnoses())
}
