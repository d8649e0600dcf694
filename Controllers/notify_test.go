package Controllers

import (
	"net/http"
	"sync"
	"testing"

	"MindLine/Dispatch"
	"MindLine/Models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMessenger struct {
	mu     sync.Mutex
	phones []string
}

func (m *recordingMessenger) SendMessage(phone, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.phones = append(m.phones, phone)
	return nil
}

func TestRetryDispatchLeavesOriginalTerminal(t *testing.T) {
	setupTestDB(t)
	DispatchRunner = Dispatch.NewRunner(Models.DB, &recordingMessenger{}, Dispatch.NewRealClock())

	job := Models.NotificationJob{
		Reference:       "retry-origin",
		Strategy:        Models.StrategyWaterfall,
		Template:        "Hi {name}",
		Status:          Models.JobStatusError,
		Sent:            1,
		Total:           2,
		IntervalMinutes: 1,
		NextIndex:       2,
		PracticeGroupID: 1,
		Recipients: []Models.NotificationRecipient{
			{PatientID: 1, Name: "Ann", Phone: "+15550110", Position: 0},
			{PatientID: 2, Name: "Bo", Phone: "+15550111", Position: 1, Failed: true},
		},
	}
	require.NoError(t, Models.DB.Create(&job).Error)

	w := postJSON(t, RetryDispatch, gin.H{"reference": "retry-origin"}, 1)
	require.Equal(t, http.StatusOK, w.Code)

	// The original must stay terminal, never flip back to sending, or the
	// resume sweep would re-run an already-attempted queue.
	var original Models.NotificationJob
	require.NoError(t, Models.DB.Where("reference = ?", "retry-origin").First(&original).Error)
	assert.Equal(t, Models.JobStatusRetried, original.Status)

	var resumable int64
	Models.DB.Model(&Models.NotificationJob{}).
		Where("reference = ? AND status = ?", "retry-origin", Models.JobStatusSending).
		Count(&resumable)
	assert.Zero(t, resumable)

	// A fresh job carries the retry, targeting only the failed recipient.
	var retry Models.NotificationJob
	require.NoError(t, Models.DB.Preload("Recipients").
		Where("reference <> ?", "retry-origin").First(&retry).Error)
	require.Len(t, retry.Recipients, 1)
	assert.Equal(t, "Bo", retry.Recipients[0].Name)
}

func TestStartDispatchRejectsHeldSlot(t *testing.T) {
	setupTestDB(t)
	DispatchRunner = Dispatch.NewRunner(Models.DB, &recordingMessenger{}, Dispatch.NewRealClock())

	patient := Models.Patient{Name: "Ann", Phone: "+15550112", PracticeGroupID: 4}
	require.NoError(t, Models.DB.Create(&patient).Error)

	holder := uint(99)
	slot := Models.AppointmentSlot{
		ProviderID:  1,
		DateTime:    "2026/09/10 & 3:00 PM",
		IsAvailable: true,
		HeldByJobID: &holder,
	}
	require.NoError(t, Models.DB.Create(&slot).Error)

	w := postJSON(t, StartDispatch, gin.H{
		"patient_ids": []uint{patient.ID},
		"template":    "Hi {name}",
		"strategy":    Models.StrategyBlast,
		"slot_id":     slot.ID,
	}, 4)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Slot is not available")

	var jobs int64
	Models.DB.Model(&Models.NotificationJob{}).Count(&jobs)
	assert.Zero(t, jobs)
}
