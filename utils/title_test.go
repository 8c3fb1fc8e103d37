package utils

import (
	"testing"

	"backend/models"
)

func TestIsGenericTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"", true},
		{"meal", true},
		{"Food", true},
		{"Two separate items", true},
		{"Various Foods", true},
		{"3 items", true},
		{"a couple of items", true},
		{"Some food", true},
		{"Turkey Sandwich", false},
		{"Mac and Cheese", false},
		{"Chicken meal", false},
		{"Yogurt & Berries", false},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := IsGenericTitle(tt.title); got != tt.want {
				t.Errorf("IsGenericTitle(%q) = %v, want %v", tt.title, got, tt.want)
			}
		})
	}
}

func TestRepairTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		foods []models.FoodItem
		want  string
	}{
		{
			name:  "good title kept",
			title: "Turkey Sandwich & Chips",
			foods: []models.FoodItem{{Name: "turkey sandwich"}, {Name: "chips"}},
			want:  "Turkey Sandwich & Chips",
		},
		{
			name:  "generic replaced by single food",
			title: "Two separate items",
			foods: []models.FoodItem{{Name: "turkey sandwich"}},
			want:  "Turkey Sandwich",
		},
		{
			name:  "generic replaced by first two foods",
			title: "various foods",
			foods: []models.FoodItem{{Name: "yogurt"}, {Name: "berries"}, {Name: "granola"}},
			want:  "Yogurt & Berries",
		},
		{
			name:  "no foods leaves title alone",
			title: "meal",
			foods: nil,
			want:  "meal",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairTitle(tt.title, tt.foods); got != tt.want {
				t.Errorf("RepairTitle(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestCleanFoodName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"turkey sandwich", "Turkey Sandwich"},
		{"grilled chicken", "Chicken"},
		{"fresh berries serving", "Berries"},
		{"chips", "Chips"},
		{"fried", "Fried"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CleanFoodName(tt.in); got != tt.want {
				t.Errorf("CleanFoodName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
