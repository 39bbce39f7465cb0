package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/extract"
	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/llm"
	"github.com/ladlekit/ladle/internal/source"
	"github.com/ladlekit/ladle/internal/vault"
)

const cakeJSON = `{
	"title": "Simple Cake",
	"ingredients": ["2 cups flour", "1 cup sugar"],
	"instructions": ["Mix and bake at 350F for 20 minutes."]
}`

type stubFetcher struct {
	caption string
	err     error
	calls   int
}

func (s *stubFetcher) FetchCaption(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.caption, s.err
}

type stubRecorder struct {
	entries []history.Entry
	err     error
}

func (s *stubRecorder) Record(_ context.Context, e history.Entry) error {
	s.entries = append(s.entries, e)
	return s.err
}

func newTestPipeline(t *testing.T, mock *llm.MockClient, opts Options) (*Pipeline, string) {
	t.Helper()
	root := t.TempDir()
	writer, err := vault.NewWriter(root, "recipes", nil)
	require.NoError(t, err)
	return New(extract.New(mock, nil), writer, opts), root
}

func TestIngestTextToVault(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	p, root := newTestPipeline(t, mock, Options{})

	result, err := p.Ingest(context.Background(), IngestInput{
		Input: "Simple cake: mix 2 cups flour with 1 cup sugar, bake at 350F.",
	})
	require.NoError(t, err)

	assert.Equal(t, "Simple Cake", result.Recipe.Metadata.Title)
	assert.Equal(t, "simple-cake", result.Slug)
	assert.Equal(t, source.FormatText, result.Format)
	assert.True(t, result.Created)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, filepath.Join(root, "recipes", "simple-cake.md"), result.Path)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Equal(t, result.Markdown, string(data))
	assert.Contains(t, string(data), "# Simple Cake")
	assert.Contains(t, string(data), "- 2 cups flour")
	assert.Contains(t, string(data), "1. Mix and bake at 350F for 20 minutes.")
}

func TestIngestPreviewSkipsWrite(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	p, root := newTestPipeline(t, mock, Options{})

	result, err := p.Ingest(context.Background(), IngestInput{
		Input:   "Simple cake recipe text.",
		Preview: true,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Path)
	assert.False(t, result.Created)
	assert.Contains(t, result.Markdown, "# Simple Cake")
	assert.NoFileExists(t, filepath.Join(root, "recipes", "simple-cake.md"))
}

func TestIngestInstagramURL(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	fetcher := &stubFetcher{caption: "Simple cake! 2 cups flour, 1 cup sugar, bake 350F."}
	p, _ := newTestPipeline(t, mock, Options{Fetcher: fetcher})

	result, err := p.Ingest(context.Background(), IngestInput{
		Input: "https://www.instagram.com/p/Cxyz123/?igsh=abc",
	})
	require.NoError(t, err)

	assert.Equal(t, source.FormatInstagram, result.Format)
	assert.Equal(t, 1, fetcher.calls)
	// The cleaned URL lands in the extraction input.
	require.NotEmpty(t, mock.Requests)
	assert.Contains(t, mock.Requests[0].User, "Simple cake!")
}

func TestIngestDuplicateRejected(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON, cakeJSON}}
	p, _ := newTestPipeline(t, mock, Options{})

	_, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)

	_, err = p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	assert.True(t, errors.Is(err, errors.ErrDuplicateRecipe), "expected DUPLICATE_RECIPE, got %v", err)
}

func TestIngestRerunWithMatchingIngredients(t *testing.T) {
	improved := `{
		"title": "Simple Cake",
		"ingredients": ["2 cups flour", "1 cup sugar"],
		"instructions": ["Sift the flour.", "Mix and bake at 350F for 20 minutes."]
	}`
	mock := &llm.MockClient{Responses: []string{cakeJSON, improved}}
	p, _ := newTestPipeline(t, mock, Options{})

	first, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)
	require.True(t, first.Created)

	second, err := p.Ingest(context.Background(), IngestInput{
		Input:     "cake text, updated",
		Overwrite: vault.PolicyIfIngredientsMatch,
	})
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Path, second.Path)

	data, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1. Sift the flour.")
}

func TestIngestConflictingIngredients(t *testing.T) {
	other := `{
		"title": "Simple Cake",
		"ingredients": ["3 eggs", "1 cup milk"],
		"instructions": ["Whisk and bake."]
	}`
	mock := &llm.MockClient{Responses: []string{cakeJSON, other}}
	p, _ := newTestPipeline(t, mock, Options{})

	first, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)
	original, err := os.ReadFile(first.Path)
	require.NoError(t, err)

	_, err = p.Ingest(context.Background(), IngestInput{
		Input:     "different cake text",
		Overwrite: vault.PolicyIfIngredientsMatch,
	})
	assert.True(t, errors.Is(err, errors.ErrConflictingRecipe), "expected CONFLICTING_RECIPE, got %v", err)

	// The existing file is untouched.
	after, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(after))
}

func TestIngestRepairRecovers(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{"not json at all", cakeJSON}}
	p, _ := newTestPipeline(t, mock, Options{})

	result, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Calls())
	assert.Equal(t, "Simple Cake", result.Recipe.Metadata.Title)
}

func TestIngestRepairExhausted(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{"not json", "still not json"}}
	p, _ := newTestPipeline(t, mock, Options{})

	_, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	assert.True(t, errors.Is(err, errors.ErrExtractionSchema), "expected EXTRACTION_SCHEMA, got %v", err)
	assert.Equal(t, 2, mock.Calls())
}

func TestIngestEmptyInput(t *testing.T) {
	p, _ := newTestPipeline(t, &llm.MockClient{}, Options{})
	_, err := p.Ingest(context.Background(), IngestInput{Input: "   "})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedInput), "expected UNSUPPORTED_INPUT, got %v", err)
}

func TestIngestFetcherFailure(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("connection refused")}
	p, _ := newTestPipeline(t, &llm.MockClient{}, Options{Fetcher: fetcher})

	_, err := p.Ingest(context.Background(), IngestInput{
		Input: "https://www.instagram.com/reel/Cabc999/",
	})
	assert.True(t, errors.Is(err, errors.ErrSourceFetch), "expected SOURCE_FETCH_FAILED, got %v", err)
}

func TestIngestRecordsHistory(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	recorder := &stubRecorder{}
	p, _ := newTestPipeline(t, mock, Options{Recorder: recorder})

	result, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, result.RunID, entry.ID)
	assert.Equal(t, "Simple Cake", entry.Title)
	assert.Equal(t, "simple-cake", entry.Slug)
	assert.Equal(t, result.Path, entry.Path)
	assert.Equal(t, "text", entry.Format)
	assert.True(t, entry.Created)
}

func TestIngestPreviewNotRecorded(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	recorder := &stubRecorder{}
	p, _ := newTestPipeline(t, mock, Options{Recorder: recorder})

	_, err := p.Ingest(context.Background(), IngestInput{Input: "cake text", Preview: true})
	require.NoError(t, err)
	assert.Empty(t, recorder.entries)
}

func TestIngestRecorderFailureNotFatal(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	recorder := &stubRecorder{err: fmt.Errorf("disk full")}
	p, _ := newTestPipeline(t, mock, Options{Recorder: recorder})

	result, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)
	assert.FileExists(t, result.Path)
}

func TestIngestResultDurationSerializesMilliseconds(t *testing.T) {
	data, err := json.Marshal(IngestResult{DurationMS: 1500})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration_ms":1500`)
	assert.NotContains(t, string(data), "1500000000")
}

func TestIngestStageTimings(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	p, _ := newTestPipeline(t, mock, Options{})

	result, err := p.Ingest(context.Background(), IngestInput{Input: "cake text"})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.Stages.NormalizeMS, int64(0))
	assert.GreaterOrEqual(t, result.Stages.ExtractMS, int64(0))
	assert.GreaterOrEqual(t, result.Stages.RenderMS, int64(0))
	assert.GreaterOrEqual(t, result.Stages.WriteMS, int64(0))

	data, err := json.Marshal(result.Stages)
	require.NoError(t, err)
	for _, key := range []string{"normalize_ms", "extract_ms", "render_ms", "write_ms"} {
		assert.Contains(t, string(data), key)
	}
}

func TestIngestPreviewSkipsWriteTiming(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	p, _ := newTestPipeline(t, mock, Options{})

	result, err := p.Ingest(context.Background(), IngestInput{Input: "cake text", Preview: true})
	require.NoError(t, err)
	assert.Zero(t, result.Stages.WriteMS)
}

func TestIngestRunIDsUnique(t *testing.T) {
	mock := &llm.MockClient{Responses: []string{cakeJSON}}
	p, _ := newTestPipeline(t, mock, Options{})

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		result, err := p.Ingest(context.Background(), IngestInput{Input: "cake text", Preview: true})
		require.NoError(t, err)
		require.False(t, seen[result.RunID], "duplicate run ID %s", result.RunID)
		seen[result.RunID] = true
		require.True(t, strings.ToUpper(result.RunID) == result.RunID)
	}
}
