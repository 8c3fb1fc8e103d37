package models

import (
	"time"

	"gorm.io/gorm"
)

// DailyTotal accumulates the nutrition of everything a user logged on one
// calendar date. Updated additively on logging and by delta on refinement,
// never recomputed from scratch.
type DailyTotal struct {
	gorm.Model
	UserID string    `gorm:"index;not null"`
	Date   time.Time `gorm:"index;not null"`

	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Sodium   float64
}
