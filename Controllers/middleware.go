package Controllers

import (
	"MindLine/Models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func getScopedDB(c *gin.Context) *gorm.DB {
	db, exists := c.Get("db")
	if !exists {
		return Models.DB
	}

	dbFunc, ok := db.(func(string) *gorm.DB)
	if !ok {
		return Models.DB
	}

	modelName, exists := c.Get("modelName")
	if exists {
		if tableName, ok := modelName.(string); ok {
			return dbFunc(tableName)
		}
	}

	return dbFunc("")
}

func practiceGroupID(c *gin.Context) uint {
	if id, exists := c.Get("practiceGroupID"); exists {
		if groupID, ok := id.(uint); ok {
			return groupID
		}
	}
	return 0
}
