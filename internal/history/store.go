package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one recorded ingest run.
type Entry struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	Path       string        `json:"path"`
	Format     string        `json:"format"`
	SourceURL  string        `json:"source_url,omitempty"`
	RawSource  string        `json:"raw_source,omitempty"`
	Created    bool      `json:"created"`
	DurationMS int64     `json:"duration_ms"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Store records and queries ingest runs.
type Store struct {
	db *sql.DB
}

// NewStore wraps an initialized history database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record inserts one ingest run. The caller supplies the run ID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("entry ID is required")
	}
	if e.IngestedAt.IsZero() {
		e.IngestedAt = time.Now()
	}
	created := 0
	if e.Created {
		created = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingests (id, title, slug, path, format, source_url, raw_source, created, duration_ms, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Slug, e.Path, e.Format,
		nullString(e.SourceURL), nullString(e.RawSource),
		created, e.DurationMS, e.IngestedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record ingest: %w", err)
	}
	return nil
}

// List returns the most recent ingest runs, newest first.
// A limit <= 0 defaults to 50.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, slug, path, format, source_url, raw_source, created, duration_ms, ingested_at
		FROM ingests
		ORDER BY ingested_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingests: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			sourceURL  sql.NullString
			rawSource  sql.NullString
			created    int
			ingestedAt int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Slug, &e.Path, &e.Format,
			&sourceURL, &rawSource, &created, &e.DurationMS, &ingestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ingest row: %w", err)
		}
		e.SourceURL = sourceURL.String
		e.RawSource = rawSource.String
		e.Created = created != 0
		e.IngestedAt = time.UnixMilli(ingestedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ingests: %w", err)
	}
	return entries, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
