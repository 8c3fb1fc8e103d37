package models

// FoodItem is one food component of an analyzed meal. Composite foods
// (a sandwich, a salad) carry their parts in Ingredients; ingredient
// nutrient values are display-only and already counted in the parent.
type FoodItem struct {
	Name        string     `json:"name"`
	Quantity    float64    `json:"quantity"`
	Unit        string     `json:"unit"`
	Calories    float64    `json:"calories"`
	Protein     float64    `json:"protein"`
	Carbs       float64    `json:"carbs"`
	Fat         float64    `json:"fat"`
	Fiber       float64    `json:"fiber"`
	Sugar       float64    `json:"sugar"`
	Sodium      float64    `json:"sodium"`
	Ingredients []FoodItem `json:"ingredients,omitempty"`
}

// MealAnalysis is the structured outcome of analyzing or refining a meal
// description. Totals are always recomputed from the top-level foods.
type MealAnalysis struct {
	Foods         []FoodItem `json:"foods"`
	Title         string     `json:"title"`
	Confidence    float64    `json:"confidence"`
	Notes         string     `json:"notes"`
	TotalCalories float64    `json:"totalCalories"`
	TotalProtein  float64    `json:"totalProtein"`
	TotalCarbs    float64    `json:"totalCarbs"`
	TotalFat      float64    `json:"totalFat"`
}

// ConversationTurn is one entry in a meal group's correction history.
// Assistant turns hold the serialized MealAnalysis at that point.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
