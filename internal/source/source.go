package source

import (
	"context"
	"strings"

	"github.com/ladlekit/ladle/internal/errors"
)

// Format identifies the kind of input handed to the pipeline.
type Format string

const (
	FormatText      Format = "text"      // free text recipe
	FormatInstagram Format = "instagram" // Instagram post URL
	FormatAuto      Format = "auto"      // detect from input
)

// CaptionFetcher retrieves the caption text for an Instagram post URL.
// Retry/backoff policy belongs to the implementation, not the caller.
type CaptionFetcher interface {
	FetchCaption(ctx context.Context, url string) (string, error)
}

// NormalizeInput contains parameters for the Normalize operation.
type NormalizeInput struct {
	Input  string
	Format Format // default: FormatAuto
}

// NormalizeOutput contains the result of the Normalize operation.
type NormalizeOutput struct {
	// Payload is the plain-text recipe content ready for extraction
	Payload string

	// DetectedFormat is text or instagram, never auto
	DetectedFormat Format

	// SourceURL is the cleaned post URL when the input was an Instagram link
	SourceURL string
}

// Normalize converts heterogeneous input into a single plain-text payload
// plus a source tag. Instagram URLs are resolved to their caption via the
// fetcher collaborator; plain text passes through with whitespace
// normalization only.
func Normalize(ctx context.Context, input NormalizeInput, fetcher CaptionFetcher) (*NormalizeOutput, error) {
	trimmed := strings.TrimSpace(input.Input)
	if trimmed == "" {
		return nil, errors.NewUnsupportedInput("input is empty")
	}

	format := input.Format
	if format == "" {
		format = FormatAuto
	}

	switch format {
	case FormatAuto:
		if IsInstagramURL(trimmed) {
			return normalizeInstagram(ctx, trimmed, fetcher)
		}
		return normalizeText(trimmed), nil
	case FormatText:
		return normalizeText(trimmed), nil
	case FormatInstagram:
		if !IsInstagramURL(trimmed) {
			return nil, errors.NewUnsupportedInput("input is not an Instagram post URL")
		}
		return normalizeInstagram(ctx, trimmed, fetcher)
	default:
		return nil, errors.NewInvalidRequest("format must be one of: text, instagram, auto")
	}
}

// normalizeText cleans free-text input.
func normalizeText(text string) *NormalizeOutput {
	return &NormalizeOutput{
		Payload:        CleanText(text),
		DetectedFormat: FormatText,
	}
}

// normalizeInstagram resolves a post URL to its caption.
func normalizeInstagram(ctx context.Context, url string, fetcher CaptionFetcher) (*NormalizeOutput, error) {
	cleaned := CleanURL(url)
	if fetcher == nil {
		return nil, errors.NewSourceFetch(cleaned, errNoFetcher)
	}

	caption, err := fetcher.FetchCaption(ctx, cleaned)
	if err != nil {
		return nil, errors.NewSourceFetch(cleaned, err)
	}

	payload := CleanCaption(caption)
	if payload == "" {
		return nil, errors.NewUnsupportedInput("instagram post has no caption text")
	}

	return &NormalizeOutput{
		Payload:        payload,
		DetectedFormat: FormatInstagram,
		SourceURL:      cleaned,
	}, nil
}
