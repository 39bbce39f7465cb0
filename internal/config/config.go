package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// VaultPath is the root of the document vault recipes are written into.
	VaultPath string `json:"vault_path"`

	// RecipesDir is the subdirectory of the vault that holds recipe files.
	RecipesDir string `json:"recipes_dir,omitempty"`

	// OverwritePolicy is the default behavior when a recipe file already
	// exists: "never", "if_ingredients_match", or "always".
	OverwritePolicy string `json:"overwrite_policy,omitempty"`

	// LLM configures the extraction backend.
	LLM LLMConfig `json:"llm"`

	// Fetch configures Instagram caption retrieval.
	Fetch FetchConfig `json:"fetch"`

	// LogLevel controls logging verbosity: "debug", "info", "warn", "error".
	LogLevel string `json:"log_level,omitempty"`
}

// LLMConfig holds extraction backend settings.
type LLMConfig struct {
	// BaseURL overrides the backend endpoint (e.g. a local server).
	BaseURL string `json:"base_url,omitempty"`

	// Model is the model identifier sent with each completion request.
	Model string `json:"model"`

	// APIKey authenticates against the backend. The LADLE_LLM_API_KEY
	// environment variable takes precedence so keys stay out of config files.
	APIKey string `json:"api_key,omitempty"`

	// TimeoutSeconds bounds a single completion request. 0 uses the default.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// FetchConfig holds caption retrieval settings.
type FetchConfig struct {
	// MaxAttempts is the total number of tries per URL, including the first.
	MaxAttempts int `json:"max_attempts,omitempty"`

	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		RecipesDir:      "recipes",
		OverwritePolicy: "never",
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 120,
		},
		Fetch: FetchConfig{
			MaxAttempts:    3,
			TimeoutSeconds: 15,
		},
		LogLevel: "info",
	}
}

// Load loads configuration from baseDir/config.json, applies defaults for
// unset fields, then applies LADLE_* environment overrides. Returns defaults
// if the file doesn't exist. The baseDir parameter allows tests to use
// t.TempDir() instead of ~/.ladle.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	merged := Merge(DefaultConfig(), cfg)
	applyEnv(merged)
	return merged, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs. Overlay values take precedence
// when non-zero.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.VaultPath = pick(overlay.VaultPath, base.VaultPath)
	result.RecipesDir = pick(overlay.RecipesDir, base.RecipesDir)
	result.OverwritePolicy = pick(overlay.OverwritePolicy, base.OverwritePolicy)
	result.LogLevel = pick(overlay.LogLevel, base.LogLevel)

	result.LLM.BaseURL = pick(overlay.LLM.BaseURL, base.LLM.BaseURL)
	result.LLM.Model = pick(overlay.LLM.Model, base.LLM.Model)
	result.LLM.APIKey = pick(overlay.LLM.APIKey, base.LLM.APIKey)
	result.LLM.TimeoutSeconds = pickInt(overlay.LLM.TimeoutSeconds, base.LLM.TimeoutSeconds)

	result.Fetch.MaxAttempts = pickInt(overlay.Fetch.MaxAttempts, base.Fetch.MaxAttempts)
	result.Fetch.TimeoutSeconds = pickInt(overlay.Fetch.TimeoutSeconds, base.Fetch.TimeoutSeconds)

	return result
}

// applyEnv overrides config fields from LADLE_* environment variables.
// Environment always wins over file values.
func applyEnv(cfg *Config) {
	if v := os.Getenv("LADLE_VAULT_PATH"); v != "" {
		cfg.VaultPath = v
	}
	if v := os.Getenv("LADLE_RECIPES_DIR"); v != "" {
		cfg.RecipesDir = v
	}
	if v := os.Getenv("LADLE_OVERWRITE_POLICY"); v != "" {
		cfg.OverwritePolicy = v
	}
	if v := os.Getenv("LADLE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LADLE_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LADLE_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LADLE_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LADLE_LLM_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LLM.TimeoutSeconds = n
		}
	}
}

// BaseDir returns the application state directory, honoring LADLE_HOME.
// Defaults to ~/.ladle.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("LADLE_HOME")); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ladle"), nil
}

func pick(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}
