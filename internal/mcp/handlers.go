package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/pipeline"
	"github.com/ladlekit/ladle/internal/source"
	"github.com/ladlekit/ladle/internal/vault"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	pipeline *pipeline.Pipeline
	store    *history.Store
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(p *pipeline.Pipeline, store *history.Store) *Handlers {
	return &Handlers{pipeline: p, store: store}
}

// IngestRequest represents the arguments for recipe_ingest.
type IngestRequest struct {
	Input     string `json:"input"`
	Format    string `json:"format,omitempty"`
	Overwrite string `json:"overwrite,omitempty"`
	Preview   bool   `json:"preview,omitempty"`
}

// HistoryRequest represents the arguments for recipe_history.
type HistoryRequest struct {
	Limit int `json:"limit,omitempty"`
}

// HandleIngest handles the recipe_ingest tool call.
func (h *Handlers) HandleIngest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := unmarshalArgs[IngestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	format := source.Format(input.Format)
	if format == "" {
		format = source.FormatAuto
	}
	policy, err := vault.ParsePolicy(input.Overwrite)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := h.pipeline.Ingest(ctx, pipeline.IngestInput{
		Input:     input.Input,
		Format:    format,
		Overwrite: policy,
		Preview:   input.Preview,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleHistory handles the recipe_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.store == nil {
		return errorResult(errors.NewInvalidRequest("history is not enabled")), nil
	}

	input, err := unmarshalArgs[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entries, err := h.store.List(ctx, input.Limit)
	if err != nil {
		return errorResult(errors.NewInternal(err)), nil
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	return successResult(map[string]any{"entries": entries})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if lerr, ok := err.(*errors.LadleError); ok {
		errorObj := map[string]any{
			"code":    lerr.Code,
			"message": lerr.Message,
			"status":  lerr.Status,
		}
		if lerr.Code != errors.ErrInternal && lerr.Details != nil {
			errorObj["details"] = lerr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
