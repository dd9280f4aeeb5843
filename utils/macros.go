package utils

import "math"

// Macronutrient energy factors, kcal per gram.
const (
	KcalPerGramProtein = 4
	KcalPerGramCarbs   = 4
	KcalPerGramFat     = 9
)

// CaloriesFromMacros derives total calories from gram amounts of protein,
// carbs and fat, rounded to the nearest whole kcal.
func CaloriesFromMacros(protein, carbs, fat float64) float64 {
	return math.Round(protein*KcalPerGramProtein + carbs*KcalPerGramCarbs + fat*KcalPerGramFat)
}
