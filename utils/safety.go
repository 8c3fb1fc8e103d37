package utils

import (
	"fmt"

	"backend/models"
)

// WarningSeverity categorizes how serious the flag is.
type WarningSeverity string

const (
	Info    WarningSeverity = "info"
	Caution WarningSeverity = "caution"
	High    WarningSeverity = "high"
)

// Warning is a structured finding you can show in your API / UI.
type Warning struct {
	Code     string          `json:"code"`
	Severity WarningSeverity `json:"severity"`
	Message  string          `json:"message"`
	Metric   string          `json:"metric,omitempty"`
	Value    float64         `json:"value,omitempty"`
	Limit    float64         `json:"limit,omitempty"`
}

// DGA 2020-2025 derived per-meal reference points. A single food crossing
// these deserves a flag regardless of the rest of the day.
const (
	sodiumCautionMg = 800
	sodiumHighMg    = 1500
	sugarCautionG   = 25
	sugarHighG      = 50
	fatCautionG     = 60
	calorieDense    = 1200
)

// AssessFoodWarnings flags a single analyzed food item against the
// reference points. Only emits findings when inputs are present.
func AssessFoodWarnings(f models.FoodItem) []Warning {
	warnings := []Warning{}

	if f.Sodium >= sodiumHighMg {
		warnings = append(warnings, Warning{
			Code: "SODIUM_HIGH", Severity: High, Metric: "sodium",
			Value: f.Sodium, Limit: sodiumHighMg,
			Message: fmt.Sprintf("%s is very high in sodium (%.0f mg)", f.Name, f.Sodium),
		})
	} else if f.Sodium >= sodiumCautionMg {
		warnings = append(warnings, Warning{
			Code: "SODIUM_ELEVATED", Severity: Caution, Metric: "sodium",
			Value: f.Sodium, Limit: sodiumCautionMg,
			Message: fmt.Sprintf("%s is high in sodium (%.0f mg)", f.Name, f.Sodium),
		})
	}

	if f.Sugar >= sugarHighG {
		warnings = append(warnings, Warning{
			Code: "SUGAR_HIGH", Severity: High, Metric: "sugar",
			Value: f.Sugar, Limit: sugarHighG,
			Message: fmt.Sprintf("%s is very high in sugar (%.0f g)", f.Name, f.Sugar),
		})
	} else if f.Sugar >= sugarCautionG {
		warnings = append(warnings, Warning{
			Code: "SUGAR_ELEVATED", Severity: Caution, Metric: "sugar",
			Value: f.Sugar, Limit: sugarCautionG,
			Message: fmt.Sprintf("%s is high in sugar (%.0f g)", f.Name, f.Sugar),
		})
	}

	if f.Fat >= fatCautionG {
		warnings = append(warnings, Warning{
			Code: "FAT_ELEVATED", Severity: Caution, Metric: "fat",
			Value: f.Fat, Limit: fatCautionG,
			Message: fmt.Sprintf("%s is high in fat (%.0f g)", f.Name, f.Fat),
		})
	}

	if f.Calories >= calorieDense {
		warnings = append(warnings, Warning{
			Code: "CALORIE_DENSE", Severity: Info, Metric: "calories",
			Value: f.Calories, Limit: calorieDense,
			Message: fmt.Sprintf("%s is calorie dense (%.0f kcal)", f.Name, f.Calories),
		})
	}

	return warnings
}

// AssessFoodSafety keeps the simple message-only signature.
func AssessFoodSafety(f models.FoodItem) []string {
	ws := AssessFoodWarnings(f)
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Message)
	}
	return out
}
