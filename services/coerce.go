package services

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"backend/models"
	"backend/utils"
)

// The coercion layer is the single place where the two tolerated input
// shapes (flat nutrient fields, or nested nutrition/totalNutrition
// sub-objects) collapse into the canonical MealAnalysis. Downstream code
// never branches on which shape the caller sent.

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError enumerates every offending field path, not just the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "invalid analysis: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(path, message string) {
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

// CoerceAnalysis validates and coerces a decoded JSON object in the strict
// shape the completion service is contracted to return.
func CoerceAnalysis(raw map[string]interface{}) (*models.MealAnalysis, error) {
	return coerceAnalysis(raw, false)
}

// CoerceExistingAnalysis accepts the looser shape callers send when they
// already hold a displayed analysis: per-item nested nutrition objects and
// a totalNutrition object are tolerated and flattened.
func CoerceExistingAnalysis(raw map[string]interface{}) (*models.MealAnalysis, error) {
	return coerceAnalysis(raw, true)
}

func coerceAnalysis(raw map[string]interface{}, loose bool) (*models.MealAnalysis, error) {
	errs := &ValidationError{}
	out := &models.MealAnalysis{}

	foodsRaw, ok := raw["foods"].([]interface{})
	if !ok || len(foodsRaw) == 0 {
		errs.add("foods", "at least one food item is required")
		return nil, errs
	}

	for i, f := range foodsRaw {
		path := fmt.Sprintf("foods[%d]", i)
		item, itemOK := coerceFoodItem(f, path, loose, errs)
		if itemOK {
			out.Foods = append(out.Foods, item)
		}
	}

	if title, ok := raw["title"].(string); ok {
		out.Title = strings.TrimSpace(title)
	}
	if notes, ok := raw["notes"].(string); ok {
		out.Notes = notes
	}

	out.Confidence = 0.5
	if cv, ok := raw["confidence"]; ok {
		if c, numOK := coerceNumber(cv); numOK {
			out.Confidence = clamp01(c)
		} else {
			errs.add("confidence", "must be a number")
		}
	}

	if len(errs.Fields) > 0 {
		return nil, errs
	}
	return out, nil
}

func coerceFoodItem(v interface{}, path string, loose bool, errs *ValidationError) (models.FoodItem, bool) {
	var item models.FoodItem
	before := len(errs.Fields)

	m, ok := v.(map[string]interface{})
	if !ok {
		errs.add(path, "must be an object")
		return item, false
	}

	name, _ := m["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		errs.add(path+".name", "name is required")
	}
	item.Name = name

	item.Quantity, item.Unit = normalizeItemQuantity(m)

	// In the loose shape nutrient fields may live under a nested
	// "nutrition" object; nested values win over flat ones.
	var nested map[string]interface{}
	if loose {
		nested, _ = m["nutrition"].(map[string]interface{})
	}
	get := func(key string) (interface{}, bool) {
		if nested != nil {
			if nv, ok := nested[key]; ok {
				return nv, true
			}
		}
		nv, ok := m[key]
		return nv, ok
	}

	item.Calories = requiredNutrient(get, "calories", path, errs)
	item.Protein = requiredNutrient(get, "protein", path, errs)
	item.Carbs = requiredNutrient(get, "carbs", path, errs)
	item.Fat = requiredNutrient(get, "fat", path, errs)
	item.Fiber = optionalNutrient(get, "fiber", path, errs)
	item.Sugar = optionalNutrient(get, "sugar", path, errs)
	item.Sodium = optionalNutrient(get, "sodium", path, errs)

	if ingRaw, ok := m["ingredients"].([]interface{}); ok {
		for i, ing := range ingRaw {
			ingPath := fmt.Sprintf("%s.ingredients[%d]", path, i)
			child, childOK := coerceFoodItem(ing, ingPath, loose, errs)
			if childOK {
				item.Ingredients = append(item.Ingredients, child)
			}
		}
	}

	return item, len(errs.Fields) == before
}

func normalizeItemQuantity(m map[string]interface{}) (float64, string) {
	qty, unit := utils.NormalizeQuantity(m["quantity"])
	if unit == utils.DefaultUnit {
		if s, ok := m["unit"].(string); ok {
			unit = utils.NormalizeUnit(s)
		}
	}
	return qty, unit
}

type lookup func(key string) (interface{}, bool)

func requiredNutrient(get lookup, key, path string, errs *ValidationError) float64 {
	v, ok := get(key)
	if !ok || v == nil {
		errs.add(path+"."+key, "required nutrient is missing")
		return 0
	}
	n, numOK := coerceNumber(v)
	if !numOK {
		errs.add(path+"."+key, "must be a number")
		return 0
	}
	if n < 0 {
		errs.add(path+"."+key, "must not be negative")
		return 0
	}
	return n
}

func optionalNutrient(get lookup, key, path string, errs *ValidationError) float64 {
	v, ok := get(key)
	if !ok || v == nil {
		return 0
	}
	n, numOK := coerceNumber(v)
	if !numOK {
		errs.add(path+"."+key, "must be a number")
		return 0
	}
	if n < 0 {
		errs.add(path+"."+key, "must not be negative")
		return 0
	}
	return n
}

var leadingFloat = regexp.MustCompile(`^-?\d+(?:\.\d+)?`)

// coerceNumber accepts the value types a decoded JSON object can hold:
// float64, json.Number and numeric-looking strings ("450", "450 kcal").
// NaN and infinities are rejected.
func coerceNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(n)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, !math.IsNaN(f) && !math.IsInf(f, 0)
		}
		if tok := leadingFloat.FindString(s); tok != "" {
			f, err := strconv.ParseFloat(tok, 64)
			return f, err == nil
		}
		return 0, false
	default:
		return 0, false
	}
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// RecomputeTotals derives the analysis totals from the top-level foods.
// Contract: aggregation walks the top-level list only — ingredients already
// contribute to their parent's values, recursing here would double count.
func RecomputeTotals(a *models.MealAnalysis) {
	a.TotalCalories, a.TotalProtein, a.TotalCarbs, a.TotalFat = 0, 0, 0, 0
	for _, f := range a.Foods {
		a.TotalCalories += f.Calories
		a.TotalProtein += f.Protein
		a.TotalCarbs += f.Carbs
		a.TotalFat += f.Fat
	}
}

// FinalizeAnalysis applies the invariants every outgoing analysis must
// satisfy: locally recomputed totals and a non-degenerate title.
func FinalizeAnalysis(a *models.MealAnalysis) {
	RecomputeTotals(a)
	a.Title = utils.RepairTitle(a.Title, a.Foods)
}
