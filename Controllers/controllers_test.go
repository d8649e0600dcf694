package Controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"MindLine/Models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points Models.DB at a fresh in-memory database. One
// connection only, shared-cache sqlite loses its tables otherwise.
func setupTestDB(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&Models.PracticeGroup{}, &Models.DeviceToken{}, &Models.User{},
		&Models.Patient{}, &Models.Provider{}, &Models.AppointmentSlot{},
		&Models.WaitlistEntry{}, &Models.Appointment{},
		&Models.NotificationJob{}, &Models.NotificationRecipient{},
	))

	Models.DB = db
	MatchCache = nil
}

// scopeToGroup mirrors what Middleware.SetPracticeGroup stashes on the
// context for protected routes.
func scopeToGroup(c *gin.Context, groupID uint) {
	c.Set("practiceGroupID", groupID)
	c.Set("db", func(tableName string) *gorm.DB {
		if tableName == "" {
			return Models.DB.Where("practice_group_id = ?", groupID)
		}
		return Models.DB.Where(fmt.Sprintf("%s.practice_group_id = ?", tableName), groupID)
	})
}

// postJSON invokes a handler directly with a JSON body. groupID zero
// leaves the context unscoped, as on public routes.
func postJSON(t *testing.T, handler gin.HandlerFunc, body interface{}, groupID uint) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest("POST", "/", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	if groupID != 0 {
		scopeToGroup(c, groupID)
	}
	handler(c)
	return w
}

func getJSON(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	handler(c)
	return w
}
