package recipe

import (
	"fmt"
	"strings"
)

// Validate checks the semantic invariants of a recipe: non-empty title,
// non-empty ingredient and instruction lists, and sane numeric fields.
// It returns a list of human-readable violations, empty when the recipe
// is valid. Structural concerns (field presence, types) are the
// extractor's responsibility.
func Validate(r *Recipe) []string {
	var problems []string

	if strings.TrimSpace(r.Metadata.Title) == "" {
		problems = append(problems, "title must not be empty")
	}
	if len(nonBlank(r.Ingredients)) == 0 {
		problems = append(problems, "ingredients must not be empty")
	}
	if len(nonBlank(r.Instructions)) == 0 {
		problems = append(problems, "instructions must not be empty")
	}

	if r.Metadata.PrepTimeMinutes != nil && *r.Metadata.PrepTimeMinutes < 0 {
		problems = append(problems, fmt.Sprintf("prep_time_minutes must be non-negative, got %d", *r.Metadata.PrepTimeMinutes))
	}
	if r.Metadata.CookTimeMinutes != nil && *r.Metadata.CookTimeMinutes < 0 {
		problems = append(problems, fmt.Sprintf("cook_time_minutes must be non-negative, got %d", *r.Metadata.CookTimeMinutes))
	}
	if r.Metadata.Servings != nil && *r.Metadata.Servings < 1 {
		problems = append(problems, fmt.Sprintf("servings must be positive, got %d", *r.Metadata.Servings))
	}

	if m := r.Metadata.Macros; m != nil {
		macroFields := []struct {
			name  string
			value *float64
		}{
			{"calories", m.Calories},
			{"protein_g", m.ProteinG},
			{"carbs_g", m.CarbsG},
			{"fat_g", m.FatG},
		}
		for _, f := range macroFields {
			if f.value != nil && *f.value < 0 {
				problems = append(problems, fmt.Sprintf("macros.%s must be non-negative, got %g", f.name, *f.value))
			}
		}
	}

	return problems
}

// nonBlank filters out empty and whitespace-only entries.
func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
