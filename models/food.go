package models

import "gorm.io/gorm"

// FoodDefinition is a reusable food row, deduplicated by name + normalized
// quantity + unit. Logged entries snapshot its values and are not affected
// by later edits here.
type FoodDefinition struct {
	gorm.Model
	Name     string  `gorm:"uniqueIndex:idx_food_def;not null"`
	Quantity float64 `gorm:"uniqueIndex:idx_food_def"`
	Unit     string  `gorm:"uniqueIndex:idx_food_def"`

	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Sodium   float64
}
