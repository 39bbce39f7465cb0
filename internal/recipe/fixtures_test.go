package recipe

import "time"

// Shared fixtures for the render/parse pair. Duplicate detection re-parses
// rendered files, so both sides test against the same recipes.

func intPtr(n int) *int {
	return &n
}

func floatPtr(f float64) *float64 {
	return &f
}

// simpleCake is the minimal fixture: required fields only.
func simpleCake() *Recipe {
	return &Recipe{
		Metadata: RecipeMetadata{
			Title: "Simple Cake",
		},
		Ingredients:  []string{"2 cups flour", "1 cup sugar"},
		Instructions: []string{"Mix and bake at 350F for 20 minutes."},
		RawSource:    "2 cups flour, 1 cup sugar. Mix and bake at 350F for 20 minutes.",
	}
}

// fullCurry exercises every metadata field plus notes.
func fullCurry() *Recipe {
	return &Recipe{
		Metadata: RecipeMetadata{
			Title:           "Thai Green Curry: Weeknight Edition",
			PrepTimeMinutes: intPtr(15),
			CookTimeMinutes: intPtr(25),
			Servings:        intPtr(4),
			Cuisine:         "Thai",
			Tags:            []string{"curry", "weeknight"},
			Macros: &MacroNutrients{
				Calories: floatPtr(520),
				ProteinG: floatPtr(28.5),
				CarbsG:   floatPtr(41),
				FatG:     floatPtr(24),
			},
			SourceURL: "https://www.instagram.com/p/Cabc123",
			Created:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		Ingredients: []string{
			"400ml coconut milk",
			"2 tbsp green curry paste",
			"500g chicken thighs, sliced",
			"1 cup Thai basil",
		},
		Instructions: []string{
			"Fry the curry paste in a splash of coconut milk until fragrant.",
			"Add chicken and cook 5 minutes.",
			"Pour in remaining coconut milk and simmer 15 minutes.",
			"Stir in basil off the heat.",
		},
		Notes: "Freezes well. Swap chicken for tofu to make it vegetarian.",
	}
}
