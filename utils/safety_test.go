package utils

import (
	"testing"

	"backend/models"
)

func TestAssessFoodWarnings(t *testing.T) {
	tests := []struct {
		name      string
		food      models.FoodItem
		wantCodes []string
	}{
		{
			name:      "clean food has no warnings",
			food:      models.FoodItem{Name: "apple", Calories: 95, Sugar: 19},
			wantCodes: []string{},
		},
		{
			name:      "elevated sodium",
			food:      models.FoodItem{Name: "ramen", Sodium: 900},
			wantCodes: []string{"SODIUM_ELEVATED"},
		},
		{
			name:      "very high sodium wins over elevated",
			food:      models.FoodItem{Name: "instant ramen", Sodium: 1800},
			wantCodes: []string{"SODIUM_HIGH"},
		},
		{
			name:      "stacked findings",
			food:      models.FoodItem{Name: "milkshake", Calories: 1300, Sugar: 80, Fat: 65},
			wantCodes: []string{"SUGAR_HIGH", "FAT_ELEVATED", "CALORIE_DENSE"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessFoodWarnings(tt.food)
			if len(got) != len(tt.wantCodes) {
				t.Fatalf("got %d warnings, want %d: %+v", len(got), len(tt.wantCodes), got)
			}
			for i, w := range got {
				if w.Code != tt.wantCodes[i] {
					t.Errorf("warning[%d].Code = %q, want %q", i, w.Code, tt.wantCodes[i])
				}
			}
		})
	}
}
