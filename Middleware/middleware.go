package Middleware

import (
	"fmt"
	"net/http"

	"MindLine/Models"
	"MindLine/Utils/Token"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func JwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		err := Token.TokenValid(c)
		if err != nil {
			c.String(http.StatusUnauthorized, "Unauthorized Token Invalid")
			c.Abort()
			return
		}
		c.Next()
	}
}

// SetPracticeGroup resolves the caller's practice group and stashes a
// scoped DB accessor so handlers only ever see their own group's rows.
func SetPracticeGroup() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := Token.ExtractTokenID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		user, err := Models.GetUserByID(userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		c.Set("practiceGroupID", user.PracticeGroupID)

		dbWrapper := func(tableName string) *gorm.DB {
			if tableName == "" {
				return Models.DB.Where("practice_group_id = ?", user.PracticeGroupID)
			}
			return Models.DB.Where(fmt.Sprintf("%s.practice_group_id = ?", tableName), user.PracticeGroupID)
		}

		c.Set("db", dbWrapper)
		c.Next()
	}
}

func PermissionCheckAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user_id, err := Token.ExtractTokenID(c)

		if err != nil {
			c.String(http.StatusBadRequest, "Unauthorized Token Extraction")
			c.Abort()
			return
		}

		user, err := Models.GetUserByID(user_id)
		if err != nil {
			c.String(http.StatusBadRequest, "Unauthorized User Extraction")
			c.Abort()
			return
		}

		if user.Permission >= 2 {
			c.Next()
		} else {
			c.String(http.StatusBadRequest, "Unauthorized Not Enough Permission")
			c.Abort()
		}
	}
}
