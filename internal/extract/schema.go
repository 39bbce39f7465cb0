package extract

import (
	"sync"

	"github.com/invopop/jsonschema"
)

// recipeWire is the exact shape the backend is asked to produce. It is the
// declared output schema (via reflection below) and the structural
// validation target. Keep field names in lockstep with the recipe model's
// JSON tags.
type recipeWire struct {
	Title           string   `json:"title" jsonschema:"description=Recipe title"`
	PrepTimeMinutes *int     `json:"prep_time_minutes,omitempty" jsonschema:"description=Preparation time in minutes"`
	CookTimeMinutes *int     `json:"cook_time_minutes,omitempty" jsonschema:"description=Cooking time in minutes"`
	Servings        *int     `json:"servings,omitempty" jsonschema:"description=Number of servings"`
	Cuisine         string   `json:"cuisine,omitempty" jsonschema:"description=Cuisine type such as Italian or Thai"`
	Tags            []string `json:"tags,omitempty" jsonschema:"description=Short categorization tags"`
	Ingredients     []string `json:"ingredients" jsonschema:"description=Ingredients with quantities in display order"`
	Instructions    []string `json:"instructions" jsonschema:"description=Cooking steps in order"`
	Notes           string   `json:"notes,omitempty" jsonschema:"description=Additional notes or comments"`
	Calories        *float64 `json:"calories,omitempty" jsonschema:"description=Estimated calories per serving"`
	ProteinG        *float64 `json:"protein_g,omitempty" jsonschema:"description=Estimated protein grams per serving"`
	CarbsG          *float64 `json:"carbs_g,omitempty" jsonschema:"description=Estimated carbohydrate grams per serving"`
	FatG            *float64 `json:"fat_g,omitempty" jsonschema:"description=Estimated fat grams per serving"`
}

// requiredFields must be present as JSON keys for a response to pass
// structural validation.
var requiredFields = []string{"title", "ingredients", "instructions"}

var (
	schemaOnce   sync.Once
	cachedSchema *jsonschema.Schema
)

// wireSchema reflects the JSON schema for recipeWire once and caches it.
func wireSchema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		reflector := &jsonschema.Reflector{
			DoNotReference: true,
		}
		cachedSchema = reflector.Reflect(&recipeWire{})
	})
	return cachedSchema
}
