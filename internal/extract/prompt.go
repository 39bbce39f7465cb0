package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPayloadChars caps what gets sent to the backend. Long social-media
// captions carry a lot of non-recipe text; truncation keeps token usage
// predictable.
const maxPayloadChars = 5000

const systemPrompt = `You extract structured recipe data from unstructured text.
Return a single JSON object matching the provided schema. Do not invent
ingredients or steps that are not in the text. Estimate calories, protein_g,
carbs_g, and fat_g per serving only when the text gives enough to estimate
from; otherwise omit them. Use null or omit any field the text does not
support. Return JSON only, no commentary.`

// userPrompt wraps the payload for the initial extraction call.
func userPrompt(payload string) string {
	return fmt.Sprintf("Extract the recipe from the following text:\n\n%s", payload)
}

// repairPrompt asks the backend to correct a structurally invalid response.
// The validation error is appended so the model can see what went wrong.
func repairPrompt(payload, previous, validationErr string) string {
	return fmt.Sprintf(
		"Extract the recipe from the following text:\n\n%s\n\n"+
			"Your previous response was rejected: %s\n\n"+
			"Previous response:\n%s\n\n"+
			"Return a corrected JSON object matching the schema. JSON only.",
		payload, validationErr, previous)
}

// truncatePayload cuts overly long payloads, preferring a sentence or line
// boundary when one exists in the final fifth of the budget. The fallback
// cut never lands mid-rune.
func truncatePayload(payload string) string {
	if len(payload) <= maxPayloadChars {
		return payload
	}
	end := maxPayloadChars
	for end > 0 && !utf8.RuneStart(payload[end]) {
		end--
	}
	cut := payload[:end]
	boundary := strings.LastIndex(cut, ".")
	if nl := strings.LastIndex(cut, "\n"); nl > boundary {
		boundary = nl
	}
	if boundary > maxPayloadChars*4/5 {
		return cut[:boundary+1]
	}
	return cut
}
