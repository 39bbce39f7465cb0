package recipe

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// frontmatter is the YAML serialization of RecipeMetadata. Field order here
// is the field order in the output; keep it in lockstep with ParseDocument.
type frontmatter struct {
	Title           string          `yaml:"title"`
	PrepTimeMinutes *int            `yaml:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int            `yaml:"cook_time_minutes,omitempty"`
	Servings        *int            `yaml:"servings,omitempty"`
	Cuisine         string          `yaml:"cuisine,omitempty"`
	Tags            []string        `yaml:"tags,omitempty"`
	Macros          *MacroNutrients `yaml:"macros,omitempty"`
	SourceURL       string          `yaml:"source_url,omitempty"`
	Created         string          `yaml:"created,omitempty"`
}

// Render serializes a recipe into a markdown document with a YAML
// frontmatter block. It is deterministic: the same recipe always produces
// the same bytes. The recipe is assumed valid (see Validate); rendering
// itself has no failure modes beyond YAML marshaling, which is surfaced
// for plumbing only.
func Render(r *Recipe) (string, error) {
	fm := frontmatter{
		Title:           r.Metadata.Title,
		PrepTimeMinutes: r.Metadata.PrepTimeMinutes,
		CookTimeMinutes: r.Metadata.CookTimeMinutes,
		Servings:        r.Metadata.Servings,
		Cuisine:         r.Metadata.Cuisine,
		Tags:            r.Metadata.Tags,
		Macros:          r.Metadata.Macros,
		SourceURL:       r.Metadata.SourceURL,
	}
	if !r.Metadata.Created.IsZero() {
		fm.Created = r.Metadata.Created.UTC().Format(time.RFC3339)
	}

	fmBytes, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to marshal frontmatter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fmBytes)
	b.WriteString("---\n\n")

	b.WriteString("# ")
	b.WriteString(r.Metadata.Title)
	b.WriteString("\n\n")

	b.WriteString("## Ingredients\n\n")
	for _, ing := range r.Ingredients {
		b.WriteString("- ")
		b.WriteString(ing)
		b.WriteString("\n")
	}

	b.WriteString("\n## Instructions\n\n")
	for i, step := range r.Instructions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	if strings.TrimSpace(r.Notes) != "" {
		b.WriteString("\n## Notes\n\n")
		b.WriteString(strings.TrimSpace(r.Notes))
		b.WriteString("\n")
	}

	return b.String(), nil
}
