package vault

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ladlekit/ladle/internal/errors"
	"github.com/ladlekit/ladle/internal/recipe"
)

// OverwritePolicy controls behavior when the target file already exists.
type OverwritePolicy string

const (
	// PolicyNever fails on any existing file (default: safest)
	PolicyNever OverwritePolicy = "never"

	// PolicyIfIngredientsMatch overwrites only when the existing file holds
	// the same ingredient set (a re-run/update of the same recipe)
	PolicyIfIngredientsMatch OverwritePolicy = "if_ingredients_match"

	// PolicyAlways overwrites unconditionally
	PolicyAlways OverwritePolicy = "always"
)

// ParsePolicy validates a policy string, defaulting empty to PolicyNever.
func ParsePolicy(s string) (OverwritePolicy, error) {
	switch OverwritePolicy(s) {
	case "":
		return PolicyNever, nil
	case PolicyNever, PolicyIfIngredientsMatch, PolicyAlways:
		return OverwritePolicy(s), nil
	default:
		return "", errors.NewInvalidRequest("overwrite policy must be one of: never, if_ingredients_match, always")
	}
}

// WriteInput contains parameters for the Write operation.
type WriteInput struct {
	Recipe   *recipe.Recipe
	Rendered string
	Policy   OverwritePolicy // default: PolicyNever
}

// WriteResult contains the result of the Write operation.
type WriteResult struct {
	Path    string `json:"path"`
	Slug    string `json:"slug"`
	Created bool   `json:"created"`
}

// Writer persists rendered recipes into the vault with duplicate-safe
// filenames and atomic replacement. Safe for concurrent use.
type Writer struct {
	root   string
	subdir string
	logger *log.Logger
	locks  *pathLocks

	// rename is swappable in tests to inject failures between temp write
	// and final rename
	rename func(oldpath, newpath string) error
}

// NewWriter creates a Writer for recipesSubdir under vaultRoot. The vault
// root must already exist; the subdirectory is created on first write.
func NewWriter(vaultRoot, recipesSubdir string, logger *log.Logger) (*Writer, error) {
	if vaultRoot == "" {
		return nil, errors.NewInvalidRequest("vault root is required")
	}
	info, err := os.Stat(vaultRoot)
	if err != nil {
		return nil, errors.NewVaultWrite(vaultRoot, fmt.Errorf("vault root not accessible: %w", err))
	}
	if !info.IsDir() {
		return nil, errors.NewVaultWrite(vaultRoot, fmt.Errorf("vault root is not a directory"))
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Writer{
		root:   vaultRoot,
		subdir: recipesSubdir,
		logger: logger.With("component", "vault"),
		locks:  newPathLocks(),
		rename: os.Rename,
	}, nil
}

// Check reports whether the vault root is still an accessible directory.
// The root can disappear after construction (unmounted drive, deleted
// directory), so the health endpoint re-stats it on every call.
func (w *Writer) Check() error {
	info, err := os.Stat(w.root)
	if err != nil {
		return errors.NewVaultWrite(w.root, fmt.Errorf("vault root not accessible: %w", err))
	}
	if !info.IsDir() {
		return errors.NewVaultWrite(w.root, fmt.Errorf("vault root is not a directory"))
	}
	return nil
}

// TargetPath returns the path a recipe title maps to, without writing.
func (w *Writer) TargetPath(title string) (string, error) {
	s := recipe.Slug(title)
	if s == "" {
		return "", errors.NewInvalidTitle(title)
	}
	return filepath.Join(w.root, w.subdir, s+".md"), nil
}

// Write persists a rendered recipe under its slug-derived filename.
// The existence check, ingredient comparison, and rename are serialized
// per target path, so concurrent writes to the same slug cannot interleave.
func (w *Writer) Write(ctx context.Context, input WriteInput) (*WriteResult, error) {
	if input.Recipe == nil {
		return nil, errors.NewInvalidRequest("recipe is required")
	}
	if input.Rendered == "" {
		return nil, errors.NewInvalidRequest("rendered content is required")
	}
	policy := input.Policy
	if policy == "" {
		policy = PolicyNever
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}

	title := input.Recipe.Metadata.Title
	slugged := recipe.Slug(title)
	if slugged == "" {
		return nil, errors.NewInvalidTitle(title)
	}

	dir := filepath.Join(w.root, w.subdir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.NewVaultWrite(dir, fmt.Errorf("failed to create recipes directory: %w", err))
	}

	target := filepath.Join(dir, slugged+".md")

	lock := w.locks.acquire(target)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	created := true
	if _, err := os.Lstat(target); err == nil {
		created = false
		if err := w.checkExisting(target, title, input.Recipe.Ingredients, policy); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.NewVaultWrite(target, err)
	}

	if err := w.writeAtomic(dir, slugged, target, input.Rendered); err != nil {
		return nil, err
	}

	w.logger.Info("wrote recipe", "path", target, "created", created)
	return &WriteResult{
		Path:    target,
		Slug:    slugged,
		Created: created,
	}, nil
}

// checkExisting applies the overwrite policy against the file already at
// the target path.
func (w *Writer) checkExisting(target, title string, ingredients []string, policy OverwritePolicy) error {
	switch policy {
	case PolicyNever:
		return errors.NewDuplicateRecipe(title, target)
	case PolicyAlways:
		return nil
	}

	// PolicyIfIngredientsMatch: re-parse the existing file and compare
	// ingredient sets. A file we cannot parse is not provably the same
	// recipe, so it conflicts.
	content, err := os.ReadFile(target)
	if err != nil {
		return errors.NewVaultWrite(target, fmt.Errorf("failed to read existing recipe: %w", err))
	}
	doc, err := recipe.ParseDocument(string(content))
	if err != nil {
		w.logger.Warn("existing file is not a parseable recipe, treating as conflict", "path", target, "err", err)
		return errors.NewConflictingRecipe(title, target)
	}
	if !recipe.IngredientsEqual(ingredients, doc.Ingredients) {
		return errors.NewConflictingRecipe(title, target)
	}
	return nil
}

// writeAtomic writes content to a temp file in the target's directory,
// flushes it, and renames it into place. A crash or failure at any point
// leaves the previous target file intact.
func (w *Writer) writeAtomic(dir, slugged, target, content string) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := filepath.Join(dir, "."+slugged+"."+hex.EncodeToString(randBytes)+".tmp")

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return errors.NewVaultWrite(target, fmt.Errorf("failed to create temp file: %w", err))
	}

	// Remove the temp file on any failure; the target stays untouched.
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.WriteString(content); err != nil {
		return errors.NewVaultWrite(target, err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewVaultWrite(target, err)
	}
	if err := file.Close(); err != nil {
		return errors.NewVaultWrite(target, fmt.Errorf("failed to close temp file: %w", err))
	}
	file = nil

	// Refuse to rename over a symlink (os.Rename would follow the parent,
	// not the link, but a link here means the vault layout is off).
	if info, err := os.Lstat(target); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewVaultWrite(target, fmt.Errorf("target is a symlink"))
	}

	if err := w.rename(tempPath, target); err != nil {
		return errors.NewVaultWrite(target, fmt.Errorf("failed to finalize write: %w", err))
	}

	success = true
	return nil
}
