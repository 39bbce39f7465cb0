package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/extract"
	"github.com/ladlekit/ladle/internal/history"
	"github.com/ladlekit/ladle/internal/recipe"
	"github.com/ladlekit/ladle/internal/source"
	"github.com/ladlekit/ladle/internal/vault"
)

// Recorder persists completed ingest runs. Implemented by history.Store;
// nil disables recording.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Pipeline runs the full ingest flow: normalize input, extract a recipe,
// render it, and write it into the vault.
type Pipeline struct {
	fetcher   source.CaptionFetcher
	extractor *extract.Extractor
	writer    *vault.Writer
	recorder  Recorder
	logger    *log.Logger
}

// Options configure optional pipeline collaborators.
type Options struct {
	// Fetcher resolves Instagram URLs to captions. Nil means URL inputs fail.
	Fetcher source.CaptionFetcher

	// Recorder receives one history entry per successful non-preview run.
	Recorder Recorder

	Logger *log.Logger
}

// New assembles a Pipeline around an extractor and a vault writer.
func New(extractor *extract.Extractor, writer *vault.Writer, opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		fetcher:   opts.Fetcher,
		extractor: extractor,
		writer:    writer,
		recorder:  opts.Recorder,
		logger:    logger.With("component", "pipeline"),
	}
}

// IngestInput contains parameters for the Ingest operation.
type IngestInput struct {
	// Input is raw recipe text or an Instagram post URL.
	Input string

	// Format selects the input kind; default is auto-detection.
	Format source.Format

	// Overwrite controls behavior when the target file exists.
	Overwrite vault.OverwritePolicy

	// Preview renders the recipe without writing it to the vault.
	Preview bool
}

// IngestResult contains the result of the Ingest operation.
type IngestResult struct {
	// RunID uniquely identifies this ingest run.
	RunID string `json:"run_id"`

	// Recipe is the validated extraction result.
	Recipe *recipe.Recipe `json:"recipe"`

	// Markdown is the rendered document.
	Markdown string `json:"markdown"`

	// Path is the vault file written; empty in preview mode.
	Path string `json:"path,omitempty"`

	// Slug is the filename-safe identifier derived from the title.
	Slug string `json:"slug"`

	// Created reports whether a new file was created (false on overwrite
	// or preview).
	Created bool `json:"created"`

	// Format is the detected input format.
	Format source.Format `json:"format"`

	// DurationMS is the total wall time of the run in milliseconds.
	DurationMS int64 `json:"duration_ms"`

	// Stages holds per-stage wall times.
	Stages StageTimings `json:"stages"`
}

// StageTimings breaks the run duration down by stage, in milliseconds.
// WriteMS is zero for preview runs.
type StageTimings struct {
	NormalizeMS int64 `json:"normalize_ms"`
	ExtractMS   int64 `json:"extract_ms"`
	RenderMS    int64 `json:"render_ms"`
	WriteMS     int64 `json:"write_ms"`
}

// Health checks the pipeline's collaborators: the vault root must be an
// accessible directory and the extraction backend must answer a cheap
// ping. The returned map holds "ok" or the failure per check name; the
// bool is false when any check failed.
func (p *Pipeline) Health(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{"vault": "ok", "llm": "ok"}
	healthy := true
	if err := p.writer.Check(); err != nil {
		checks["vault"] = err.Error()
		healthy = false
	}
	if err := p.extractor.Ping(ctx); err != nil {
		checks["llm"] = err.Error()
		healthy = false
	}
	return checks, healthy
}

// Ingest runs the full flow for one input. Every error carries a typed
// code so front ends can map it to an exit code or HTTP status.
func (p *Pipeline) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	runID := ulid.Make().String()
	start := time.Now()
	logger := p.logger.With("run_id", runID)

	normalized, err := source.Normalize(ctx, source.NormalizeInput{
		Input:  input.Input,
		Format: input.Format,
	}, p.fetcher)
	if err != nil {
		return nil, err
	}
	normalizeDone := time.Now()
	logger.Debug("normalized input",
		"format", normalized.DetectedFormat,
		"payload_chars", len(normalized.Payload),
		"elapsed", normalizeDone.Sub(start))

	rec, err := p.extractor.Extract(ctx, extract.Input{
		Payload:   normalized.Payload,
		SourceURL: normalized.SourceURL,
		RawSource: input.Input,
	})
	if err != nil {
		return nil, err
	}
	extractDone := time.Now()
	logger.Debug("extracted recipe",
		"title", rec.Metadata.Title,
		"ingredients", len(rec.Ingredients),
		"elapsed", extractDone.Sub(normalizeDone))

	markdown, err := recipe.Render(rec)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	renderDone := time.Now()

	result := &IngestResult{
		RunID:    runID,
		Recipe:   rec,
		Markdown: markdown,
		Slug:     recipe.Slug(rec.Metadata.Title),
		Format:   normalized.DetectedFormat,
		Stages: StageTimings{
			NormalizeMS: normalizeDone.Sub(start).Milliseconds(),
			ExtractMS:   extractDone.Sub(normalizeDone).Milliseconds(),
			RenderMS:    renderDone.Sub(extractDone).Milliseconds(),
		},
	}

	if input.Preview {
		result.DurationMS = time.Since(start).Milliseconds()
		logger.Info("preview complete", "title", rec.Metadata.Title, "duration", time.Since(start))
		return result, nil
	}

	written, err := p.writer.Write(ctx, vault.WriteInput{
		Recipe:   rec,
		Rendered: markdown,
		Policy:   input.Overwrite,
	})
	if err != nil {
		return nil, err
	}
	result.Path = written.Path
	result.Slug = written.Slug
	result.Created = written.Created
	result.Stages.WriteMS = time.Since(renderDone).Milliseconds()
	result.DurationMS = time.Since(start).Milliseconds()

	logger.Info("ingest complete",
		"title", rec.Metadata.Title,
		"path", written.Path,
		"created", written.Created,
		"duration", time.Since(start))

	p.record(ctx, result, input.Input)
	return result, nil
}

// record writes the run to history. Recording failures are logged, not
// surfaced: the recipe is already safely on disk.
func (p *Pipeline) record(ctx context.Context, result *IngestResult, rawInput string) {
	if p.recorder == nil {
		return
	}
	entry := history.Entry{
		ID:         result.RunID,
		Title:      result.Recipe.Metadata.Title,
		Slug:       result.Slug,
		Path:       result.Path,
		Format:     string(result.Format),
		SourceURL:  result.Recipe.Metadata.SourceURL,
		RawSource:  rawInput,
		Created:    result.Created,
		DurationMS: result.DurationMS,
		IngestedAt: time.Now(),
	}
	if err := p.recorder.Record(ctx, entry); err != nil {
		p.logger.Warn("failed to record ingest history", "run_id", result.RunID, "err", err)
	}
}
