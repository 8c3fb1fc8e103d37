package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"backend/llm"
	"backend/logger"
	"backend/models"

	"go.uber.org/zap"
)

// ChatClient is the completion-service contract the engine depends on.
type ChatClient interface {
	Chat(messages []llm.Message) (string, error)
}

type ExtractionService struct {
	chat ChatClient
}

func NewExtractionService(chat ChatClient) *ExtractionService {
	return &ExtractionService{chat: chat}
}

const analysisSchemaHint = `Respond with a single JSON object and nothing else, in exactly this shape:
{
  "foods": [
    {
      "name": "string",
      "quantity": number,
      "unit": "string",
      "calories": number,
      "protein": number,
      "carbs": number,
      "fat": number,
      "fiber": number,
      "sugar": number,
      "sodium": number,
      "ingredients": []
    }
  ],
  "title": "short human-friendly meal title",
  "confidence": number between 0 and 1,
  "notes": "string"
}`

const primarySystemPrompt = `You are a nutrition analyst. Given a free-text meal description, break it down into food items with estimated nutrition values.

` + analysisSchemaHint + `

Rules, with examples:
1. A dish name joined by a conjunction is ONE item: "mac and cheese" is a single food, as are "fish and chips" ordered as one dish, "peanut butter and jelly sandwich". Genuinely separate foods joined by a conjunction are MULTIPLE items: "burger and fries" is two foods, "turkey sandwich and chips" is two foods.
2. Composite foods (a sandwich, a salad, a burrito) must list their parts in "ingredients", each with its own nutrition values. The parent item's values are the true totals for that food; ingredient values are informational. Simple foods (an apple, a glass of milk) use an empty ingredients array.
3. Quantities are numbers, never text. If the amount is unclear, use 1 with unit "serving".
4. The title names the actual foods ("Turkey Sandwich & Chips"), never a count of them ("two items").

Example: "turkey sandwich and chips" returns two foods: a "turkey sandwich" with ingredients (bread, turkey, lettuce, ...) and "chips" with no ingredients.`

const degradedSystemPrompt = `Extract food items and nutrition estimates from the meal description.

` + analysisSchemaHint + `

Output ONLY the JSON object. No markdown, no code fences, no commentary before or after. Every nutrient field must be a plain number.`

const refinementRule = `The conversation contains an evolving meal analysis. Apply the user's latest correction to the most recent analysis: later messages supersede earlier ones, and any item the user did not mention must be preserved unchanged. Return the COMPLETE updated analysis, not just the changed items.`

// AnalyzeDescription runs the full extraction pipeline for a first-time
// meal description.
func (s *ExtractionService) AnalyzeDescription(description string) (*models.MealAnalysis, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, NewStageError(StageValidation, "description must not be empty", nil)
	}

	analysis, err := s.extract([]llm.Message{
		{Role: "system", Content: primarySystemPrompt},
		{Role: "user", Content: description},
	}, []llm.Message{
		{Role: "system", Content: degradedSystemPrompt},
		{Role: "user", Content: description},
	})
	if err != nil {
		return nil, err
	}

	repairConjunctionSplit(analysis, description)
	FinalizeAnalysis(analysis)
	return analysis, nil
}

// RefineAnalysis replays a full correction history and returns the updated
// complete analysis. The last turn of the history is the new user correction.
func (s *ExtractionService) RefineAnalysis(history []models.ConversationTurn) (*models.MealAnalysis, error) {
	if len(history) == 0 {
		return nil, NewStageError(StageValidation, "correction history must not be empty", nil)
	}

	primary := make([]llm.Message, 0, len(history)+1)
	primary = append(primary, llm.Message{Role: "system", Content: primarySystemPrompt + "\n\n" + refinementRule})
	for _, turn := range history {
		primary = append(primary, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	degraded := make([]llm.Message, 0, len(history)+1)
	degraded = append(degraded, llm.Message{Role: "system", Content: degradedSystemPrompt + "\n\n" + refinementRule})
	for _, turn := range history {
		degraded = append(degraded, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	analysis, err := s.extract(primary, degraded)
	if err != nil {
		return nil, err
	}

	FinalizeAnalysis(analysis)
	return analysis, nil
}

// extract runs the primary attempt and, if the reply cannot be parsed or
// validated, exactly one degraded retry with the terser prompt. A second
// failure is surfaced as extraction-failed; fabricated data is never
// returned.
func (s *ExtractionService) extract(primary, degraded []llm.Message) (*models.MealAnalysis, error) {
	reply, err := s.chat.Chat(primary)
	if err == nil {
		analysis, parseErr := parseAnalysisReply(reply)
		if parseErr == nil {
			return analysis, nil
		}
		logger.Warn("primary extraction attempt rejected", zap.Error(parseErr))
	} else {
		logger.Warn("primary extraction attempt failed", zap.Error(err))
	}

	reply, err = s.chat.Chat(degraded)
	if err != nil {
		return nil, NewStageError(StageExtraction, "meal analysis service unavailable", err)
	}
	analysis, parseErr := parseAnalysisReply(reply)
	if parseErr != nil {
		return nil, NewStageError(StageExtraction, "meal analysis service returned an unusable response", parseErr)
	}
	return analysis, nil
}

var codeFence = regexp.MustCompile("^```(?:json)?\\s*|\\s*```$")

func parseAnalysisReply(reply string) (*models.MealAnalysis, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = codeFence.ReplaceAllString(cleaned, "")

	// Tolerate stray prose around the object; the contract forbids it but
	// imperfect replies still often contain a valid object.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}
	return CoerceAnalysis(raw)
}

// Compound dishes whose names legitimately contain a conjunction; the
// split repair must leave these alone.
var compoundDishes = []string{
	"mac and cheese",
	"macaroni and cheese",
	"fish and chips",
	"peanut butter and jelly",
	"chicken and waffles",
	"biscuits and gravy",
	"bangers and mash",
	"surf and turf",
	"rice and beans",
	"salt and pepper",
}

var conjunctionToken = regexp.MustCompile(`(?i)\band\b|&`)

// repairConjunctionSplit is the local best-effort fix for a model that
// merged clearly separate foods: when the description carries conjunctions
// but exactly one item came back, split that item in two, the primary
// keeping the majority share of each nutrient. Known compound dish names
// are exempt.
func repairConjunctionSplit(a *models.MealAnalysis, description string) {
	if len(a.Foods) != 1 {
		return
	}
	conjunctions := len(conjunctionToken.FindAllString(description, -1))
	if conjunctions == 0 {
		return
	}
	lower := strings.ToLower(description)
	for _, dish := range compoundDishes {
		if strings.Contains(lower, dish) {
			return
		}
	}

	item := a.Foods[0]
	parts := conjunctionToken.Split(item.Name, 2)
	if len(parts) != 2 {
		return
	}
	first := strings.TrimSpace(parts[0])
	second := strings.TrimSpace(parts[1])
	if first == "" || second == "" {
		return
	}

	primary := splitShare(item, first, 0.6)
	secondary := splitShare(item, second, 0.4)
	a.Foods = []models.FoodItem{primary, secondary}
	logger.Info("split single item on conjunction",
		zap.String("original", item.Name),
		zap.String("primary", first),
		zap.String("secondary", second))
}

func splitShare(item models.FoodItem, name string, share float64) models.FoodItem {
	return models.FoodItem{
		Name:     name,
		Quantity: 1,
		Unit:     item.Unit,
		Calories: item.Calories * share,
		Protein:  item.Protein * share,
		Carbs:    item.Carbs * share,
		Fat:      item.Fat * share,
		Fiber:    item.Fiber * share,
		Sugar:    item.Sugar * share,
		Sodium:   item.Sodium * share,
	}
}
