package utils

import (
	"strings"

	"backend/models"
)

// The guard rejects titles that tell the user nothing: "two separate
// items", "various foods", or a bare generic noun.

var genericNouns = map[string]bool{
	"meal": true, "food": true, "foods": true, "snack": true,
	"item": true, "items": true, "dish": true, "dishes": true,
}

var cardinalWords = map[string]bool{
	"one": true, "two": true, "three": true, "four": true, "five": true,
	"six": true, "seven": true, "eight": true, "nine": true, "ten": true,
	"several": true, "couple": true, "few": true, "many": true,
}

var vagueQualifiers = map[string]bool{
	"separate": true, "various": true, "multiple": true,
	"distinct": true, "different": true, "mixed": true, "assorted": true,
}

var leadingQualifiers = map[string]bool{
	"fresh": true, "organic": true, "raw": true, "cooked": true,
	"grilled": true, "fried": true, "baked": true,
}

var trailingSuffixes = map[string]bool{
	"serving": true, "servings": true, "portion": true, "portions": true,
	"piece": true, "pieces": true, "item": true, "items": true,
}

// IsGenericTitle reports whether a proposed title matches the denylist.
func IsGenericTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	t = strings.Trim(t, ".!,")
	if t == "" {
		return true
	}
	words := strings.Fields(t)
	if len(words) == 1 {
		return genericNouns[words[0]]
	}
	// Every word must be filler (cardinal, digit, vague qualifier, article)
	// ending in a generic noun for the title to count as degenerate.
	last := words[len(words)-1]
	if !genericNouns[last] {
		return false
	}
	for _, w := range words[:len(words)-1] {
		if cardinalWords[w] || vagueQualifiers[w] || isDigits(w) ||
			w == "a" || w == "an" || w == "some" || w == "of" || w == "the" {
			continue
		}
		return false
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RepairTitle replaces a degenerate title with one derived from the food
// names: the cleaned name of a single food, or the first two cleaned names
// joined with an ampersand.
func RepairTitle(title string, foods []models.FoodItem) string {
	if !IsGenericTitle(title) {
		return title
	}
	if len(foods) == 0 {
		return title
	}
	if len(foods) == 1 {
		return CleanFoodName(foods[0].Name)
	}
	return CleanFoodName(foods[0].Name) + " & " + CleanFoodName(foods[1].Name)
}

// CleanFoodName strips leading preparation qualifiers and trailing unit-ish
// suffixes, then title-cases each remaining word.
func CleanFoodName(name string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	for len(words) > 1 && leadingQualifiers[words[0]] {
		words = words[1:]
	}
	for len(words) > 1 && trailingSuffixes[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
