package services

import (
	"errors"
	"math"
	"strings"
	"testing"

	"backend/llm"
)

// fakeChat replays scripted responses in order. A step with a non-nil error
// simulates a transport failure.
type fakeChat struct {
	steps []fakeStep
	calls [][]llm.Message
}

type fakeStep struct {
	reply string
	err   error
}

func (f *fakeChat) Chat(messages []llm.Message) (string, error) {
	f.calls = append(f.calls, messages)
	if len(f.steps) == 0 {
		return "", errors.New("no scripted reply left")
	}
	step := f.steps[0]
	f.steps = f.steps[1:]
	return step.reply, step.err
}

const macAndCheeseReply = `{
	"foods": [
		{"name": "mac and cheese", "quantity": 1, "unit": "bowl",
		 "calories": 600, "protein": 20, "carbs": 60, "fat": 30,
		 "sodium": 900,
		 "ingredients": [
			{"name": "macaroni", "quantity": 1, "unit": "cup",
			 "calories": 220, "protein": 8, "carbs": 43, "fat": 1},
			{"name": "cheese sauce", "quantity": 0.5, "unit": "cup",
			 "calories": 380, "protein": 12, "carbs": 17, "fat": 29}
		 ]}
	],
	"title": "Mac and Cheese",
	"confidence": 0.85
}`

const twoFoodsReply = `{
	"foods": [
		{"name": "burger", "quantity": 1, "unit": "serving",
		 "calories": 550, "protein": 30, "carbs": 40, "fat": 28},
		{"name": "fries", "quantity": 1, "unit": "serving",
		 "calories": 350, "protein": 4, "carbs": 45, "fat": 17}
	],
	"title": "Burger & Fries",
	"confidence": 0.8
}`

func TestAnalyzeDescriptionCompoundDish(t *testing.T) {
	chat := &fakeChat{steps: []fakeStep{{reply: macAndCheeseReply}}}
	svc := NewExtractionService(chat)

	a, err := svc.AnalyzeDescription("I had a bowl of mac and cheese")
	if err != nil {
		t.Fatalf("AnalyzeDescription: %v", err)
	}
	if len(a.Foods) != 1 {
		t.Fatalf("compound dish must stay one item, got %d", len(a.Foods))
	}
	if len(a.Foods[0].Ingredients) != 2 {
		t.Errorf("composite food lost its ingredients: %+v", a.Foods[0])
	}
	if a.TotalCalories != 600 {
		t.Errorf("totals must come from the top-level item only, got %v", a.TotalCalories)
	}
	if len(chat.calls) != 1 {
		t.Errorf("a clean reply needs no retry, got %d calls", len(chat.calls))
	}
}

func TestAnalyzeDescriptionSeparateFoods(t *testing.T) {
	chat := &fakeChat{steps: []fakeStep{{reply: twoFoodsReply}}}
	svc := NewExtractionService(chat)

	a, err := svc.AnalyzeDescription("a burger and fries")
	if err != nil {
		t.Fatalf("AnalyzeDescription: %v", err)
	}
	if len(a.Foods) != 2 {
		t.Fatalf("got %d foods, want 2", len(a.Foods))
	}
	if a.TotalCalories != 900 {
		t.Errorf("TotalCalories = %v, want 900", a.TotalCalories)
	}
}

func TestAnalyzeDescriptionConjunctionRepair(t *testing.T) {
	// The model wrongly merged two separate foods into one item.
	merged := `{
		"foods": [
			{"name": "turkey sandwich and chips", "quantity": 1, "unit": "serving",
			 "calories": 700, "protein": 30, "carbs": 70, "fat": 25}
		],
		"title": "Turkey Sandwich and Chips",
		"confidence": 0.7
	}`
	chat := &fakeChat{steps: []fakeStep{{reply: merged}}}
	svc := NewExtractionService(chat)

	a, err := svc.AnalyzeDescription("turkey sandwich and chips")
	if err != nil {
		t.Fatalf("AnalyzeDescription: %v", err)
	}
	if len(a.Foods) != 2 {
		t.Fatalf("merged item should be split in two, got %d", len(a.Foods))
	}
	if a.Foods[0].Name != "turkey sandwich" || a.Foods[1].Name != "chips" {
		t.Errorf("unexpected split names: %q, %q", a.Foods[0].Name, a.Foods[1].Name)
	}
	if a.Foods[0].Calories != 700*0.6 || a.Foods[1].Calories != 700*0.4 {
		t.Errorf("split shares wrong: %v, %v", a.Foods[0].Calories, a.Foods[1].Calories)
	}
	if math.Abs(a.TotalCalories-700) > 1e-9 {
		t.Errorf("split must preserve the total, got %v", a.TotalCalories)
	}
}

func TestAnalyzeDescriptionStripsCodeFences(t *testing.T) {
	chat := &fakeChat{steps: []fakeStep{{reply: "```json\n" + twoFoodsReply + "\n```"}}}
	svc := NewExtractionService(chat)

	a, err := svc.AnalyzeDescription("a burger and fries")
	if err != nil {
		t.Fatalf("AnalyzeDescription: %v", err)
	}
	if len(a.Foods) != 2 {
		t.Errorf("fenced reply should still parse, got %d foods", len(a.Foods))
	}
}

func TestAnalyzeDescriptionDegradedRetry(t *testing.T) {
	chat := &fakeChat{steps: []fakeStep{
		{reply: "Sure! Here is your analysis, let me know if you need more."},
		{reply: twoFoodsReply},
	}}
	svc := NewExtractionService(chat)

	a, err := svc.AnalyzeDescription("a burger and fries")
	if err != nil {
		t.Fatalf("AnalyzeDescription: %v", err)
	}
	if len(a.Foods) != 2 {
		t.Errorf("degraded retry should recover, got %d foods", len(a.Foods))
	}
	if len(chat.calls) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", len(chat.calls))
	}
	if !strings.Contains(chat.calls[1][0].Content, "ONLY the JSON object") {
		t.Errorf("retry must use the degraded prompt, got %q", chat.calls[1][0].Content)
	}
}

func TestAnalyzeDescriptionBothAttemptsFail(t *testing.T) {
	chat := &fakeChat{steps: []fakeStep{
		{reply: "no json here"},
		{reply: "still no json"},
	}}
	svc := NewExtractionService(chat)

	_, err := svc.AnalyzeDescription("a burger and fries")
	if err == nil {
		t.Fatal("expected extraction failure")
	}
	if StageOf(err) != StageExtraction {
		t.Errorf("stage = %q, want %q", StageOf(err), StageExtraction)
	}
	if len(chat.calls) != 2 {
		t.Errorf("exactly one retry allowed, got %d calls", len(chat.calls))
	}
}

func TestAnalyzeDescriptionTransportErrorThenRecovery(t *testing.T) {
	chat := &fakeChat{steps: []fakeStep{
		{err: errors.New("connection reset")},
		{reply: twoFoodsReply},
	}}
	svc := NewExtractionService(chat)

	a, err := svc.AnalyzeDescription("a burger and fries")
	if err != nil {
		t.Fatalf("AnalyzeDescription: %v", err)
	}
	if len(a.Foods) != 2 {
		t.Errorf("got %d foods, want 2", len(a.Foods))
	}
}

func TestAnalyzeDescriptionEmptyInput(t *testing.T) {
	chat := &fakeChat{}
	svc := NewExtractionService(chat)

	_, err := svc.AnalyzeDescription("   ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if StageOf(err) != StageValidation {
		t.Errorf("stage = %q, want %q", StageOf(err), StageValidation)
	}
	if len(chat.calls) != 0 {
		t.Errorf("empty input must not reach the completion service")
	}
}

func TestRefineAnalysisReplaysHistory(t *testing.T) {
	refined := `{
		"foods": [
			{"name": "burger", "quantity": 1, "unit": "serving",
			 "calories": 550, "protein": 30, "carbs": 40, "fat": 28},
			{"name": "fries", "quantity": 2, "unit": "serving",
			 "calories": 700, "protein": 8, "carbs": 90, "fat": 34}
		],
		"title": "Burger & Fries",
		"confidence": 0.8
	}`
	chat := &fakeChat{steps: []fakeStep{{reply: refined}}}
	svc := NewExtractionService(chat)

	history := historyFixture(t)
	a, err := svc.RefineAnalysis(history)
	if err != nil {
		t.Fatalf("RefineAnalysis: %v", err)
	}
	if a.Foods[1].Quantity != 2 {
		t.Errorf("correction not applied: %+v", a.Foods[1])
	}
	if a.TotalCalories != 1250 {
		t.Errorf("TotalCalories = %v, want 1250", a.TotalCalories)
	}

	// The full history must be replayed after the system prompt, in order.
	sent := chat.calls[0]
	if len(sent) != len(history)+1 {
		t.Fatalf("sent %d messages, want %d", len(sent), len(history)+1)
	}
	if sent[0].Role != "system" {
		t.Errorf("first message must be the system prompt, got role %q", sent[0].Role)
	}
	for i, turn := range history {
		if sent[i+1].Role != turn.Role || sent[i+1].Content != turn.Content {
			t.Errorf("turn %d not replayed verbatim", i)
		}
	}
}

func TestRefineAnalysisEmptyHistory(t *testing.T) {
	svc := NewExtractionService(&fakeChat{})
	if _, err := svc.RefineAnalysis(nil); err == nil {
		t.Fatal("expected validation error for empty history")
	}
}
