package Controllers

import (
	"net/http"
	"testing"

	"MindLine/Cache"
	"MindLine/Models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWaitlistCacheIsTenantScoped(t *testing.T) {
	setupTestDB(t)
	cache, err := Cache.NewMatchCache(8)
	require.NoError(t, err)
	MatchCache = cache

	provider := Models.Provider{
		Name:              "Dr. Reyes",
		Specialties:       []string{"Anxiety"},
		InsuranceAccepted: []string{"Aetna"},
		VirtualAvailable:  true,
		PracticeGroupID:   1,
	}
	require.NoError(t, Models.DB.Create(&provider).Error)

	patient := Models.Patient{
		Name:            "Confidential One",
		Phone:           "+15550101",
		Diagnosis:       "Anxiety",
		Insurance:       "Aetna",
		IsVerified:      true,
		PracticeGroupID: 1,
	}
	require.NoError(t, Models.DB.Create(&patient).Error)
	require.NoError(t, Models.DB.Create(&Models.WaitlistEntry{
		PatientID:       patient.ID,
		Urgency:         Models.UrgencyHigh,
		Position:        1,
		PracticeGroupID: 1,
	}).Error)

	body := gin.H{"provider_id": provider.ID, "filters": gin.H{}}

	// First group sees its own entry and warms the cache.
	first := postJSON(t, FetchWaitlist, body, 1)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "Confidential One")

	// Another practice group asking for the same provider ID must not be
	// served the cached list.
	second := postJSON(t, FetchWaitlist, body, 2)
	assert.Equal(t, http.StatusNotFound, second.Code)
	assert.NotContains(t, second.Body.String(), "Confidential One")
}

func TestJoinWaitlistAttributesPracticeGroupFromProvider(t *testing.T) {
	setupTestDB(t)

	provider := Models.Provider{
		Name:              "Dr. Okafor",
		Specialties:       []string{"Anxiety"},
		InsuranceAccepted: []string{"Aetna"},
		VirtualAvailable:  true,
		PracticeGroupID:   3,
	}
	require.NoError(t, Models.DB.Create(&provider).Error)

	w := postJSON(t, JoinWaitlist, gin.H{
		"patient_name": "June",
		"phone_number": "5550102",
		"diagnosis":    "Anxiety",
		"insurance":    "Aetna",
		"provider_id":  provider.ID,
	}, 0)
	require.Equal(t, http.StatusOK, w.Code)

	var patient Models.Patient
	require.NoError(t, Models.DB.Where("phone = ?", "+15550102").First(&patient).Error)
	assert.Equal(t, uint(3), patient.PracticeGroupID)

	// The joined entry is visible to the provider's own group.
	fetch := postJSON(t, FetchWaitlist, gin.H{"filters": gin.H{}}, 3)
	require.Equal(t, http.StatusOK, fetch.Code)
	assert.Contains(t, fetch.Body.String(), "June")
}

func TestJoinWaitlistRejectsUnattributableJoin(t *testing.T) {
	setupTestDB(t)

	w := postJSON(t, JoinWaitlist, gin.H{
		"patient_name": "Drifter",
		"phone_number": "5550103",
		"diagnosis":    "Anxiety",
	}, 0)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var patients int64
	Models.DB.Model(&Models.Patient{}).Count(&patients)
	assert.Zero(t, patients)
	var entries int64
	Models.DB.Model(&Models.WaitlistEntry{}).Count(&entries)
	assert.Zero(t, entries)
}
