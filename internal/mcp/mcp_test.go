package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ladlekit/ladle/internal/extract"
	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/llm"
	"github.com/ladlekit/ladle/internal/pipeline"
	"github.com/ladlekit/ladle/internal/vault"
)

const cakeJSON = `{
	"title": "Simple Cake",
	"ingredients": ["2 cups flour", "1 cup sugar"],
	"instructions": ["Mix and bake at 350F for 20 minutes."]
}`

// testSetup creates handlers backed by a mock backend and a temp vault.
func testSetup(t *testing.T, mock *llm.MockClient, withHistory bool) *Handlers {
	t.Helper()

	writer, err := vault.NewWriter(t.TempDir(), "recipes", nil)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}

	var store *history.Store
	opts := pipeline.Options{}
	if withHistory {
		db, err := history.Init(t.TempDir())
		if err != nil {
			t.Fatalf("failed to init history: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		store = history.NewStore(db)
		opts.Recorder = store
	}

	p := pipeline.New(extract.New(mock, nil), writer, opts)
	return NewHandlers(p, store)
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestHandleIngest(t *testing.T) {
	h := testSetup(t, &llm.MockClient{Responses: []string{cakeJSON}}, false)

	result, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{
		"input": "Simple cake: flour, sugar, bake at 350F.",
	}))
	if err != nil {
		t.Fatalf("HandleIngest failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var out pipeline.IngestResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if out.Recipe.Metadata.Title != "Simple Cake" {
		t.Errorf("expected title 'Simple Cake', got %q", out.Recipe.Metadata.Title)
	}
	if out.Path == "" {
		t.Error("expected path in result")
	}
}

func TestHandleIngestPreview(t *testing.T) {
	h := testSetup(t, &llm.MockClient{Responses: []string{cakeJSON}}, false)

	result, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{
		"input":   "cake text",
		"preview": true,
	}))
	if err != nil {
		t.Fatalf("HandleIngest failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var out pipeline.IngestResult
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatal(err)
	}
	if out.Path != "" {
		t.Errorf("preview should not write, got path %q", out.Path)
	}
	if out.Markdown == "" {
		t.Error("expected rendered markdown")
	}
}

func TestHandleIngestDuplicate(t *testing.T) {
	h := testSetup(t, &llm.MockClient{Responses: []string{cakeJSON, cakeJSON}}, false)

	first, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{"input": "cake"}))
	if err != nil || first.IsError {
		t.Fatalf("first ingest failed: %v %v", err, first)
	}

	second, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{"input": "cake"}))
	if err != nil {
		t.Fatalf("HandleIngest failed: %v", err)
	}
	if !second.IsError {
		t.Fatal("expected error result for duplicate")
	}

	var body struct {
		Error struct {
			Code   string `json:"code"`
			Status int    `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, second)), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "DUPLICATE_RECIPE" {
		t.Errorf("expected DUPLICATE_RECIPE, got %q", body.Error.Code)
	}
	if body.Error.Status != 409 {
		t.Errorf("expected status 409, got %d", body.Error.Status)
	}
}

func TestHandleIngestInvalidOverwrite(t *testing.T) {
	h := testSetup(t, &llm.MockClient{}, false)

	result, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{
		"input":     "cake",
		"overwrite": "maybe",
	}))
	if err != nil {
		t.Fatalf("HandleIngest failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for invalid overwrite policy")
	}
}

func TestHandleIngestEmptyInput(t *testing.T) {
	h := testSetup(t, &llm.MockClient{}, false)

	result, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{"input": ""}))
	if err != nil {
		t.Fatalf("HandleIngest failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for empty input")
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error.Code != "UNSUPPORTED_INPUT" {
		t.Errorf("expected UNSUPPORTED_INPUT, got %q", body.Error.Code)
	}
}

func TestHandleHistory(t *testing.T) {
	h := testSetup(t, &llm.MockClient{Responses: []string{cakeJSON}}, true)

	ingest, err := h.HandleIngest(context.Background(), makeRequest(map[string]any{"input": "cake"}))
	if err != nil || ingest.IsError {
		t.Fatalf("ingest failed: %v %v", err, ingest)
	}

	result, err := h.HandleHistory(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleHistory failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", resultText(t, result))
	}

	var body struct {
		Entries []history.Entry `json:"entries"`
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(body.Entries))
	}
	if body.Entries[0].Slug != "simple-cake" {
		t.Errorf("expected slug 'simple-cake', got %q", body.Entries[0].Slug)
	}
}

func TestHandleHistoryDisabled(t *testing.T) {
	h := testSetup(t, &llm.MockClient{}, false)

	result, err := h.HandleHistory(context.Background(), makeRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("HandleHistory failed: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result when history is disabled")
	}
}

func TestUnmarshalArgs(t *testing.T) {
	req := makeRequest(map[string]any{
		"input":   "cake text",
		"preview": true,
		"limit":   float64(5),
	})

	ingest, err := unmarshalArgs[IngestRequest](req)
	if err != nil {
		t.Fatalf("unmarshalArgs failed: %v", err)
	}
	if ingest.Input != "cake text" || !ingest.Preview {
		t.Errorf("unexpected ingest request: %+v", ingest)
	}

	hist, err := unmarshalArgs[HistoryRequest](req)
	if err != nil {
		t.Fatalf("unmarshalArgs failed: %v", err)
	}
	if hist.Limit != 5 {
		t.Errorf("expected limit 5, got %d", hist.Limit)
	}
}

func TestToolRegistryComplete(t *testing.T) {
	for _, name := range []string{"recipe_ingest", "recipe_history"} {
		entry, ok := toolRegistry[name]
		if !ok {
			t.Errorf("tool %s missing from registry", name)
			continue
		}
		if entry.def.Name != name {
			t.Errorf("tool %s has mismatched definition name %q", name, entry.def.Name)
		}
	}
}
