package recipe

import "time"

// MacroNutrients holds per-serving nutrition estimates. All fields are
// optional; values are estimates from the extraction backend and are trusted
// structurally, not semantically.
type MacroNutrients struct {
	// Calories per serving
	Calories *float64 `json:"calories,omitempty" yaml:"calories,omitempty"`

	// ProteinG is protein in grams
	ProteinG *float64 `json:"protein_g,omitempty" yaml:"protein_g,omitempty"`

	// CarbsG is carbohydrates in grams
	CarbsG *float64 `json:"carbs_g,omitempty" yaml:"carbs_g,omitempty"`

	// FatG is fat in grams
	FatG *float64 `json:"fat_g,omitempty" yaml:"fat_g,omitempty"`
}

// RecipeMetadata is the structured header of a recipe, serialized as YAML
// frontmatter. Title is the human-facing identity; it is not unique — the
// vault writer enforces filename uniqueness, not the model.
type RecipeMetadata struct {
	// Title is required and must be non-empty
	Title string `json:"title" yaml:"title"`

	// PrepTimeMinutes is preparation time (nullable, non-negative)
	PrepTimeMinutes *int `json:"prep_time_minutes,omitempty" yaml:"prep_time_minutes,omitempty"`

	// CookTimeMinutes is cooking time (nullable, non-negative)
	CookTimeMinutes *int `json:"cook_time_minutes,omitempty" yaml:"cook_time_minutes,omitempty"`

	// Servings is the serving count (nullable, positive)
	Servings *int `json:"servings,omitempty" yaml:"servings,omitempty"`

	// Cuisine is a freeform cuisine label (e.g., "Italian")
	Cuisine string `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`

	// Tags for categorization; order is not significant
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Macros is the optional nutrition estimate
	Macros *MacroNutrients `json:"macros,omitempty" yaml:"macros,omitempty"`

	// SourceURL points at the original post when the input was a URL
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`

	// Created is set once when the recipe is extracted
	Created time.Time `json:"created,omitempty" yaml:"-"`
}

// Recipe is the normalized record produced by one pipeline run. It is
// constructed once, immutable thereafter, and discarded after rendering;
// the durable artifact is the markdown file.
type Recipe struct {
	Metadata RecipeMetadata `json:"metadata"`

	// Ingredients in display order, must be non-empty
	Ingredients []string `json:"ingredients"`

	// Instructions in display order, must be non-empty
	Instructions []string `json:"instructions"`

	// Notes is optional freeform commentary
	Notes string `json:"notes,omitempty"`

	// RawSource is the original input text, retained for auditability
	RawSource string `json:"raw_source,omitempty"`
}
