package controllers

import (
	"net/http"
	"strings"

	"backend/llm"
	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
)

type AnalyzeMealRequest struct {
	Description      string                 `json:"description"`
	UserID           string                 `json:"user_id"`
	MealCategory     string                 `json:"meal_category"`
	Date             string                 `json:"date"`
	ExistingAnalysis map[string]interface{} `json:"existing_analysis"`
}

var mealCategories = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
	"snack":     true,
}

// AnalyzeMeal turns a free-text meal description into a structured,
// nutrition-annotated analysis and logs it. The "preview" user sentinel
// runs extraction only, persisting nothing. When the caller supplies an
// already-displayed analysis, extraction is skipped and the coerced
// analysis is persisted directly.
func AnalyzeMeal(c *gin.Context) {
	var body AnalyzeMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, services.NewStageError(services.StagePayloadParsing, "invalid request body", err))
		return
	}

	preview := body.UserID == services.PreviewUserID
	userID := c.GetString("userID")
	if !preview && userID == "" {
		respondError(c, services.NewStageError(services.StageAuthentication, "authentication required", nil))
		return
	}

	if body.ExistingAnalysis == nil && strings.TrimSpace(body.Description) == "" {
		respondError(c, services.NewStageError(services.StageValidation, "description must not be empty", nil))
		return
	}

	category := strings.ToLower(strings.TrimSpace(body.MealCategory))
	if !preview && !mealCategories[category] {
		respondError(c, services.NewStageError(services.StageValidation, "meal_category must be breakfast, lunch, dinner or snack", nil))
		return
	}

	day, err := queryDay(body.Date)
	if err != nil {
		respondError(c, services.NewStageError(services.StageValidation, "date must be YYYY-MM-DD", err))
		return
	}

	var analysis *models.MealAnalysis
	if body.ExistingAnalysis != nil {
		analysis, err = services.CoerceExistingAnalysis(body.ExistingAnalysis)
		if err != nil {
			respondError(c, services.NewStageError(services.StageValidation, err.Error(), err))
			return
		}
		services.FinalizeAnalysis(analysis)
	} else {
		extraction := services.NewExtractionService(llm.NewClient())
		analysis, err = extraction.AnalyzeDescription(body.Description)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if preview {
		c.JSON(http.StatusOK, gin.H{"success": true, "mealAnalysis": analysis})
		return
	}

	groupID, err := services.NewMealLogService().LogAnalysis(userID, day, category, analysis)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"mealAnalysis": analysis,
		"mealGroupId":  groupID,
	})
}

type RefineMealRequest struct {
	MealGroupID    string `json:"meal_group_id"`
	CorrectionText string `json:"correction_text"`
}

// RefineMeal applies a follow-up natural-language correction to a logged
// meal group and returns the updated analysis plus the full history.
func RefineMeal(c *gin.Context) {
	var body RefineMealRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, services.NewStageError(services.StagePayloadParsing, "invalid request body", err))
		return
	}

	userID := c.GetString("userID")
	if userID == "" {
		respondError(c, services.NewStageError(services.StageAuthentication, "authentication required", nil))
		return
	}

	refinement := services.NewRefinementService(
		services.NewExtractionService(llm.NewClient()),
		services.NewMealLogService(),
	)
	analysis, history, err := refinement.Refine(userID, body.MealGroupID, body.CorrectionText)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"newAnalysis": analysis,
		"newHistory":  history,
	})
}

type loggedMealItem struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Warnings string  `json:"warnings,omitempty"`
}

type loggedMealGroup struct {
	MealGroupID string                  `json:"meal_group_id"`
	Category    string                  `json:"category"`
	Title       string                  `json:"title,omitempty"`
	Items       []loggedMealItem        `json:"items"`
	Totals      services.NutrientTotals `json:"totals"`
}

// ListMeals returns the caller's logged meals for one date, grouped by
// meal group.
func ListMeals(c *gin.Context) {
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

	entries, err := services.NewMealLogService().EntriesForDate(userID, day)
	if err != nil {
		respondError(c, err)
		return
	}

	order := []string{}
	byGroup := map[string][]models.LoggedEntry{}
	for _, e := range entries {
		if _, seen := byGroup[e.MealGroupID]; !seen {
			order = append(order, e.MealGroupID)
		}
		byGroup[e.MealGroupID] = append(byGroup[e.MealGroupID], e)
	}

	groups := make([]loggedMealGroup, 0, len(order))
	for _, id := range order {
		ge := byGroup[id]
		group := loggedMealGroup{
			MealGroupID: id,
			Category:    ge[0].Category,
			Title:       groupTitle(ge[0]),
			Totals:      services.EntriesTotals(ge),
		}
		for _, e := range ge {
			group.Items = append(group.Items, loggedMealItem{
				Name:     e.Name,
				Quantity: e.Quantity,
				Unit:     e.Unit,
				Calories: e.Calories,
				Protein:  e.Protein,
				Carbs:    e.Carbs,
				Fat:      e.Fat,
				Warnings: e.Warnings,
			})
		}
		groups = append(groups, group)
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"date":    services.DayOf(day).Format("2006-01-02"),
		"meals":   groups,
	})
}

// groupTitle recovers the display title from the latest assistant turn of
// the entry's correction history, best effort.
func groupTitle(e models.LoggedEntry) string {
	history, err := services.UnmarshalHistory(e.CorrectionHistory)
	if err != nil {
		return ""
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != models.RoleAssistant {
			continue
		}
		if a, err := services.UnmarshalAnalysis(history[i].Content); err == nil {
			return a.Title
		}
		return ""
	}
	return ""
}
