package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PreviewUserID is the caller-id sentinel that runs extraction without
// persisting anything.
const PreviewUserID = "preview"

// MealLogService flattens an accepted MealAnalysis into normalized rows
// while the full hierarchy survives inside the correction history.
type MealLogService struct{}

func NewMealLogService() *MealLogService {
	return &MealLogService{}
}

type NutrientTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Sodium   float64 `json:"sodium"`
}

// LogAnalysis persists a first-time analysis: one meal group id, one
// normalized row per top-level food, and an additive daily-total update.
// Any unusable nutrient aborts the whole group; no partial rows.
func (s *MealLogService) LogAnalysis(userID string, date time.Time, category string, a *models.MealAnalysis) (string, error) {
	if err := validateConcrete(a); err != nil {
		return "", err
	}

	groupID := uuid.NewString()
	history, err := InitialHistory(a)
	if err != nil {
		return "", NewStageError(StagePersistence, "failed to record meal history", err)
	}
	historyJSON, err := MarshalHistory(history)
	if err != nil {
		return "", NewStageError(StagePersistence, "failed to record meal history", err)
	}

	day := DayOf(date)
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, f := range a.Foods {
			def, err := resolveFoodDefinition(tx, f)
			if err != nil {
				return err
			}
			entry := models.LoggedEntry{
				UserID:            userID,
				MealGroupID:       groupID,
				FoodDefinitionID:  def.ID,
				Category:          category,
				Date:              day,
				Name:              f.Name,
				Quantity:          f.Quantity,
				Unit:              f.Unit,
				Calories:          f.Calories,
				Protein:           f.Protein,
				Carbs:             f.Carbs,
				Fat:               f.Fat,
				Fiber:             f.Fiber,
				Sugar:             f.Sugar,
				Sodium:            f.Sodium,
				Warnings:          strings.Join(utils.AssessFoodSafety(f), "; "),
				CorrectionHistory: historyJSON,
				HistoryVersion:    1,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}
		return addToDailyTotal(tx, userID, day, AnalysisTotals(a))
	})
	if txErr != nil {
		var se *StageError
		if errors.As(txErr, &se) {
			return "", se
		}
		return "", NewStageError(StagePersistence, "failed to save meal", txErr)
	}
	return groupID, nil
}

// GroupEntries loads the normalized rows of one meal group.
func (s *MealLogService) GroupEntries(userID, groupID string) ([]models.LoggedEntry, error) {
	var entries []models.LoggedEntry
	err := config.DB.
		Where("user_id = ? AND meal_group_id = ?", userID, groupID).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, NewStageError(StagePersistence, "failed to load meal group", err)
	}
	if len(entries) == 0 {
		return nil, NewStageError(StageNotFound, "meal group not found", nil)
	}
	return entries, nil
}

// RewriteGroup replaces a meal group's rows with the refined analysis and
// adjusts the daily total by the delta between old and new contributions,
// as one transaction. The write is conditional on every row still carrying
// expectedVersion; a concurrent refinement surfaces as a conflict.
func (s *MealLogService) RewriteGroup(userID string, entries []models.LoggedEntry, a *models.MealAnalysis, history []models.ConversationTurn, expectedVersion int) error {
	if len(entries) == 0 {
		return NewStageError(StageNotFound, "meal group not found", nil)
	}
	if err := validateConcrete(a); err != nil {
		return err
	}

	historyJSON, err := MarshalHistory(history)
	if err != nil {
		return NewStageError(StagePersistence, "failed to record meal history", err)
	}

	groupID := entries[0].MealGroupID
	category := entries[0].Category
	day := entries[0].Date
	oldTotals := EntriesTotals(entries)
	newTotals := AnalysisTotals(a)
	newVersion := expectedVersion + 1

	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LoggedEntry{}).
			Where("user_id = ? AND meal_group_id = ? AND history_version = ?", userID, groupID, expectedVersion).
			Update("history_version", newVersion)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(entries)) {
			return NewStageError(StageConflict, "meal group was refined concurrently, reload and retry", nil)
		}

		if err := tx.Where("user_id = ? AND meal_group_id = ?", userID, groupID).
			Delete(&models.LoggedEntry{}).Error; err != nil {
			return err
		}

		for _, f := range a.Foods {
			def, err := resolveFoodDefinition(tx, f)
			if err != nil {
				return err
			}
			entry := models.LoggedEntry{
				UserID:            userID,
				MealGroupID:       groupID,
				FoodDefinitionID:  def.ID,
				Category:          category,
				Date:              day,
				Name:              f.Name,
				Quantity:          f.Quantity,
				Unit:              f.Unit,
				Calories:          f.Calories,
				Protein:           f.Protein,
				Carbs:             f.Carbs,
				Fat:               f.Fat,
				Fiber:             f.Fiber,
				Sugar:             f.Sugar,
				Sodium:            f.Sodium,
				Warnings:          strings.Join(utils.AssessFoodSafety(f), "; "),
				CorrectionHistory: historyJSON,
				HistoryVersion:    newVersion,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		return addToDailyTotal(tx, userID, day, newTotals.Minus(oldTotals))
	})
	if txErr != nil {
		var se *StageError
		if errors.As(txErr, &se) {
			return se
		}
		return NewStageError(StagePersistence, "failed to update meal", txErr)
	}
	return nil
}

// EntriesForDate lists a user's logged entries for one calendar date.
func (s *MealLogService) EntriesForDate(userID string, date time.Time) ([]models.LoggedEntry, error) {
	var entries []models.LoggedEntry
	err := config.DB.
		Where("user_id = ? AND date = ?", userID, DayOf(date)).
		Order("meal_group_id, id").
		Find(&entries).Error
	if err != nil {
		return nil, NewStageError(StagePersistence, "failed to load meals", err)
	}
	return entries, nil
}

// DailyTotalFor returns the accumulated totals for one date, a zero row
// when nothing was logged yet.
func (s *MealLogService) DailyTotalFor(userID string, date time.Time) (*models.DailyTotal, error) {
	day := DayOf(date)
	var dt models.DailyTotal
	err := config.DB.Where("user_id = ? AND date = ?", userID, day).First(&dt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.DailyTotal{UserID: userID, Date: day}, nil
	}
	if err != nil {
		return nil, NewStageError(StagePersistence, "failed to load daily totals", err)
	}
	return &dt, nil
}

// resolveFoodDefinition dedupes reusable food rows by name + normalized
// quantity + unit.
func resolveFoodDefinition(tx *gorm.DB, f models.FoodItem) (*models.FoodDefinition, error) {
	var def models.FoodDefinition
	err := tx.Where("name = ? AND quantity = ? AND unit = ?", f.Name, f.Quantity, f.Unit).
		First(&def).Error
	if err == nil {
		return &def, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	def = models.FoodDefinition{
		Name:     f.Name,
		Quantity: f.Quantity,
		Unit:     f.Unit,
		Calories: f.Calories,
		Protein:  f.Protein,
		Carbs:    f.Carbs,
		Fat:      f.Fat,
		Fiber:    f.Fiber,
		Sugar:    f.Sugar,
		Sodium:   f.Sodium,
	}
	if err := tx.Create(&def).Error; err != nil {
		return nil, err
	}
	return &def, nil
}

func addToDailyTotal(tx *gorm.DB, userID string, day time.Time, delta NutrientTotals) error {
	var dt models.DailyTotal
	err := tx.Where("user_id = ? AND date = ?", userID, day).First(&dt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		dt = models.DailyTotal{UserID: userID, Date: day}
		if err := tx.Create(&dt).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	dt.Calories = nonNegative(dt.Calories + delta.Calories)
	dt.Protein = nonNegative(dt.Protein + delta.Protein)
	dt.Carbs = nonNegative(dt.Carbs + delta.Carbs)
	dt.Fat = nonNegative(dt.Fat + delta.Fat)
	dt.Fiber = nonNegative(dt.Fiber + delta.Fiber)
	dt.Sugar = nonNegative(dt.Sugar + delta.Sugar)
	dt.Sodium = nonNegative(dt.Sodium + delta.Sodium)
	return tx.Save(&dt).Error
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

// AnalysisTotals sums the top-level foods of an analysis. Ingredients are
// excluded: they already contribute to their parent's values.
func AnalysisTotals(a *models.MealAnalysis) NutrientTotals {
	var t NutrientTotals
	for _, f := range a.Foods {
		t.Calories += f.Calories
		t.Protein += f.Protein
		t.Carbs += f.Carbs
		t.Fat += f.Fat
		t.Fiber += f.Fiber
		t.Sugar += f.Sugar
		t.Sodium += f.Sodium
	}
	return t
}

// EntriesTotals sums the nutrient snapshot of a meal group's rows.
func EntriesTotals(entries []models.LoggedEntry) NutrientTotals {
	var t NutrientTotals
	for _, e := range entries {
		t.Calories += e.Calories
		t.Protein += e.Protein
		t.Carbs += e.Carbs
		t.Fat += e.Fat
		t.Fiber += e.Fiber
		t.Sugar += e.Sugar
		t.Sodium += e.Sodium
	}
	return t
}

func (t NutrientTotals) Minus(o NutrientTotals) NutrientTotals {
	return NutrientTotals{
		Calories: t.Calories - o.Calories,
		Protein:  t.Protein - o.Protein,
		Carbs:    t.Carbs - o.Carbs,
		Fat:      t.Fat - o.Fat,
		Fiber:    t.Fiber - o.Fiber,
		Sugar:    t.Sugar - o.Sugar,
		Sodium:   t.Sodium - o.Sodium,
	}
}

// validateConcrete is the last line of defense before a write: a logged
// entry must never carry an unknown nutrient value.
func validateConcrete(a *models.MealAnalysis) error {
	if a == nil || len(a.Foods) == 0 {
		return NewStageError(StageValidation, "analysis has no food items", nil)
	}
	for i, f := range a.Foods {
		for _, v := range []float64{f.Quantity, f.Calories, f.Protein, f.Carbs, f.Fat, f.Fiber, f.Sugar, f.Sodium} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewStageError(StagePersistence,
					fmt.Sprintf("food %q has an unresolved nutrient value", f.Name), nil)
			}
		}
		if strings.TrimSpace(f.Name) == "" {
			return NewStageError(StagePersistence, fmt.Sprintf("food at index %d has no name", i), nil)
		}
		if f.Quantity <= 0 {
			return NewStageError(StagePersistence, fmt.Sprintf("food %q has a non-positive quantity", f.Name), nil)
		}
	}
	return nil
}

// DayOf truncates a timestamp to its calendar date (UTC midnight).
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// History serialization: assistant turns always hold the full serialized
// MealAnalysis so the ingredient hierarchy survives outside the normalized
// rows.

func MarshalHistory(history []models.ConversationTurn) (string, error) {
	b, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func UnmarshalHistory(s string) ([]models.ConversationTurn, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var history []models.ConversationTurn
	if err := json.Unmarshal([]byte(s), &history); err != nil {
		return nil, err
	}
	return history, nil
}

func MarshalAnalysis(a *models.MealAnalysis) (string, error) {
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func UnmarshalAnalysis(s string) (*models.MealAnalysis, error) {
	var a models.MealAnalysis
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// InitialHistory builds the first assistant turn of a fresh meal group.
func InitialHistory(a *models.MealAnalysis) ([]models.ConversationTurn, error) {
	content, err := MarshalAnalysis(a)
	if err != nil {
		return nil, err
	}
	return []models.ConversationTurn{{Role: models.RoleAssistant, Content: content}}, nil
}
