package Controllers

import (
	"fmt"
	"log"
	"net/http"

	"MindLine/Models"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
)

// ExportOutreachTable writes the notification job history to a
// spreadsheet, one row per recipient with send outcome.
func ExportOutreachTable(c *gin.Context) {
	var input struct {
		DateFrom string `json:"date_from"`
		DateTo   string `json:"date_to"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, err)
		return
	}

	var jobs []Models.NotificationJob

	query := Models.DB.Model(&Models.NotificationJob{}).Preload("Recipients")
	if input.DateFrom != "" && input.DateTo != "" {
		query = query.Where("DATE(created_at) BETWEEN ? AND ?", input.DateFrom, input.DateTo)
	}
	if err := query.Find(&jobs).Error; err != nil {
		c.JSON(http.StatusBadRequest, err)
		return
	}

	file := excelize.NewFile()
	sheet := "Sheet1"

	headers := map[string]string{
		"A1": "Date",
		"B1": "Reference",
		"C1": "Strategy",
		"D1": "Status",
		"E1": "Recipient",
		"F1": "Phone",
		"G1": "Sent At",
		"H1": "Failed",
	}
	for cell, value := range headers {
		file.SetCellValue(sheet, cell, value)
	}

	row := 2
	for _, job := range jobs {
		for _, recipient := range job.Recipients {
			sentAt := ""
			if recipient.SentAt != nil {
				sentAt = recipient.SentAt.Format("2006-01-02 3:04 PM")
			}
			file.SetCellValue(sheet, fmt.Sprintf("A%d", row), job.CreatedAt.Format("2006-01-02"))
			file.SetCellValue(sheet, fmt.Sprintf("B%d", row), job.Reference)
			file.SetCellValue(sheet, fmt.Sprintf("C%d", row), job.Strategy)
			file.SetCellValue(sheet, fmt.Sprintf("D%d", row), job.Status)
			file.SetCellValue(sheet, fmt.Sprintf("E%d", row), recipient.Name)
			file.SetCellValue(sheet, fmt.Sprintf("F%d", row), recipient.Phone)
			file.SetCellValue(sheet, fmt.Sprintf("G%d", row), sentAt)
			file.SetCellValue(sheet, fmt.Sprintf("H%d", row), recipient.Failed)
			row++
		}
	}

	c.Header("Content-Disposition", "attachment; filename=outreach.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		log.Println(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write spreadsheet"})
		return
	}
}
