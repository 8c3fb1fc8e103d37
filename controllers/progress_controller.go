package controllers

import (
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

// GetDailyProgress returns the accumulated nutrition totals for one
// calendar date, a zero row when nothing was logged.
func GetDailyProgress(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		respondError(c, services.NewStageError(services.StageAuthentication, "authentication required", nil))
		return
	}

	day, err := queryDay(c.Query("date"))
	if err != nil {
		respondError(c, services.NewStageError(services.StageValidation, "date must be YYYY-MM-DD", err))
		return
	}

	total, err := services.NewMealLogService().DailyTotalFor(userID, day)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"date":    services.DayOf(day).Format("2006-01-02"),
		"totals": gin.H{
			"calories": total.Calories,
			"protein":  total.Protein,
			"carbs":    total.Carbs,
			"fat":      total.Fat,
			"fiber":    total.Fiber,
			"sugar":    total.Sugar,
			"sodium":   total.Sodium,
		},
	})
}
