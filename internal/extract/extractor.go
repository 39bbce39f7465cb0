package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/llm"
	"github.com/ladlekit/ladle/internal/recipe"
)

// Input contains parameters for the Extract operation.
type Input struct {
	// Payload is the normalized plain-text recipe content
	Payload string

	// SourceURL is set when the input came from a post URL
	SourceURL string

	// RawSource is the original input, retained on the Recipe for audit
	RawSource string
}

// Extractor turns unstructured text into a validated Recipe via one
// schema-constrained backend call, with at most one repair re-prompt for
// structurally invalid output.
type Extractor struct {
	client llm.Client
	logger *log.Logger

	// now is swappable for tests
	now func() time.Time
}

// New creates an Extractor.
func New(client llm.Client, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Default()
	}
	return &Extractor{
		client: client,
		logger: logger.With("component", "extract"),
		now:    time.Now,
	}
}

// Ping reports whether the extraction backend is reachable.
func (e *Extractor) Ping(ctx context.Context) error {
	return e.client.Ping(ctx)
}

// Extract runs the extraction round trip and two-phase validation.
// Structural failures get one bounded repair attempt; semantic failures
// (source text lacked recipe content) fail immediately. The extractor never
// returns a Recipe that violates the model invariants.
func (e *Extractor) Extract(ctx context.Context, input Input) (*recipe.Recipe, error) {
	if strings.TrimSpace(input.Payload) == "" {
		return nil, errors.NewUnsupportedInput("extraction payload is empty")
	}

	payload := truncatePayload(input.Payload)
	if len(payload) != len(input.Payload) {
		e.logger.Warn("payload truncated", "from", len(input.Payload), "to", len(payload))
	}

	req := llm.Request{
		System:     systemPrompt,
		User:       userPrompt(payload),
		SchemaName: "recipe",
		Schema:     wireSchema(),
	}

	raw, err := e.client.Complete(ctx, req)
	if err != nil {
		return nil, errors.NewLLMUnavailable(err)
	}

	wire, structErr := decodeWire(raw)
	if structErr != nil {
		// One bounded repair attempt: re-prompt with the validation error.
		e.logger.Warn("structural validation failed, attempting repair", "err", structErr)

		req.User = repairPrompt(payload, raw, structErr.Error())
		raw, err = e.client.Complete(ctx, req)
		if err != nil {
			return nil, errors.NewLLMUnavailable(err)
		}
		wire, structErr = decodeWire(raw)
		if structErr != nil {
			return nil, errors.NewExtractionSchema(structErr.Error())
		}
	}

	r := e.buildRecipe(wire, input)
	if problems := recipe.Validate(r); len(problems) > 0 {
		// Semantic failure means the source had no usable recipe; a
		// re-prompt cannot fix that, so fail immediately.
		return nil, errors.NewExtractionQuality(strings.Join(problems, "; "))
	}

	e.logger.Info("extracted recipe",
		"title", r.Metadata.Title,
		"ingredients", len(r.Ingredients),
		"steps", len(r.Instructions))
	return r, nil
}

// decodeWire performs structural validation: the response must parse as a
// JSON object, carry every required key, and match the wire field types.
// Code fences around the JSON are tolerated.
func decodeWire(raw string) (*recipeWire, error) {
	trimmed := stripFences(strings.TrimSpace(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("empty response")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %v", err)
	}
	for _, field := range requiredFields {
		if _, ok := probe[field]; !ok {
			return nil, fmt.Errorf("missing required field %q", field)
		}
	}

	var wire recipeWire
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return nil, fmt.Errorf("field type mismatch: %v", err)
	}
	return &wire, nil
}

// stripFences removes a markdown code fence wrapper if present.
func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// buildRecipe assembles the immutable Recipe from validated wire data.
// Macro estimation is best-effort: absent values stay absent.
func (e *Extractor) buildRecipe(wire *recipeWire, input Input) *recipe.Recipe {
	meta := recipe.RecipeMetadata{
		Title:           strings.TrimSpace(wire.Title),
		PrepTimeMinutes: wire.PrepTimeMinutes,
		CookTimeMinutes: wire.CookTimeMinutes,
		Servings:        wire.Servings,
		Cuisine:         strings.TrimSpace(wire.Cuisine),
		Tags:            cleanList(wire.Tags),
		SourceURL:       input.SourceURL,
		Created:         e.now().UTC().Truncate(time.Second),
	}

	if wire.Calories != nil || wire.ProteinG != nil || wire.CarbsG != nil || wire.FatG != nil {
		meta.Macros = &recipe.MacroNutrients{
			Calories: wire.Calories,
			ProteinG: wire.ProteinG,
			CarbsG:   wire.CarbsG,
			FatG:     wire.FatG,
		}
	}

	return &recipe.Recipe{
		Metadata:     meta,
		Ingredients:  cleanList(wire.Ingredients),
		Instructions: cleanList(wire.Instructions),
		Notes:        strings.TrimSpace(wire.Notes),
		RawSource:    input.RawSource,
	}
}

// cleanList trims entries and drops blanks, preserving order.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
