package Controllers

import (
	"encoding/json"
	"net/http"
	"testing"

	"MindLine/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProvidersTrimmedHidesHeldSlots(t *testing.T) {
	setupTestDB(t)

	provider := Models.Provider{
		Name:             "Dr. Lin",
		Specialties:      []string{"Anxiety"},
		VirtualAvailable: true,
		PracticeGroupID:  1,
	}
	require.NoError(t, Models.DB.Create(&provider).Error)

	open := Models.CreateOpenSlot(provider.ID, "2026/09/10 & 3:00 PM")
	require.NoError(t, Models.DB.Create(&open).Error)

	holder := uint(42)
	held := Models.AppointmentSlot{
		ProviderID:  provider.ID,
		DateTime:    "2026/09/11 & 4:00 PM",
		IsAvailable: true,
		HeldByJobID: &holder,
	}
	require.NoError(t, Models.DB.Create(&held).Error)

	w := getJSON(t, GetProvidersTrimmed)
	require.Equal(t, http.StatusOK, w.Code)

	var output []struct {
		ID    uint                     `json:"id"`
		Slots []Models.AppointmentSlot `json:"slots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &output))
	require.Len(t, output, 1)

	// A slot currently offered by a dispatch never shows as open.
	require.Len(t, output[0].Slots, 1)
	assert.Equal(t, open.ID, output[0].Slots[0].ID)
}
