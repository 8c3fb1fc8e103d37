package models

import (
	"time"

	"gorm.io/gorm"
)

// LoggedEntry is one normalized row per top-level food of a logged meal.
// Every entry of the same meal group shares MealGroupID and an identical
// CorrectionHistory; HistoryVersion guards concurrent refinements.
type LoggedEntry struct {
	gorm.Model
	UserID      string `gorm:"index;not null"`
	MealGroupID string `gorm:"index;not null"`

	FoodDefinitionID uint
	FoodDefinition   FoodDefinition

	Category string    // breakfast|lunch|dinner|snack
	Date     time.Time `gorm:"index;not null"`

	Name     string
	Quantity float64
	Unit     string
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Sodium   float64

	Warnings string // semicolon-joined safety findings, may be empty

	CorrectionHistory string `gorm:"type:text"`
	HistoryVersion    int    `gorm:"not null;default:1"`
}
