package Middleware

import (
	"net/http/httptest"
	"testing"

	"MindLine/Models"
	"MindLine/Utils/Token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPermissionCheckAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:permcheck?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&Models.DeviceToken{}, &Models.User{}))
	Models.DB = db

	Token.Setup("test-secret", 1)

	staff := Models.User{Username: "frontdesk", Password: "pw", Permission: 1}
	_, err = staff.SaveUser()
	require.NoError(t, err)
	admin := Models.User{Username: "owner", Password: "pw", Permission: 3}
	_, err = admin.SaveUser()
	require.NoError(t, err)

	handler := PermissionCheckAdmin()

	tests := []struct {
		name    string
		userID  uint
		allowed bool
	}{
		{"staff is blocked", staff.ID, false},
		{"admin passes", admin.ID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := Token.GenerateToken(tt.userID)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/?token="+token, nil)

			handler(c)

			assert.Equal(t, tt.allowed, !c.IsAborted())
		})
	}
}
