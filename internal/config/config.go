package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "greenbacks.yaml"

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the top-level greenbacks.yaml configuration.
type Config struct {
	Workspace WorkspaceConfig `yaml:"workspace"`
	Storage   StorageConfig   `yaml:"storage"`
	Feeds     []Feed          `yaml:"feeds,omitempty"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Git       GitConfig       `yaml:"git"`
	LogLevel  string          `yaml:"log_level"`
}

// WorkspaceConfig identifies the workspace.
type WorkspaceConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// StorageConfig selects where transactions live.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	SQLitePath string `yaml:"sqlite_path,omitempty"` // relative to the workspace
}

// Feed maps a bank export to the account its rows belong to.
type Feed struct {
	Name      string `yaml:"name"`
	Format    string `yaml:"format"`
	AccountID string `yaml:"account_id"`
}

// DashboardConfig holds report defaults.
type DashboardConfig struct {
	VisibleTags      int `yaml:"visible_tags"`
	ProjectionMonths int `yaml:"projection_months"`
	TrendMonths      int `yaml:"trend_months"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a greenbacks.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadWorkspace reads greenbacks.yaml from dir, loads dir/.env when present,
// applies GREENBACKS_* environment overrides and validates the result.
func LoadWorkspace(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(name string) *Config {
	return &Config{
		Workspace: WorkspaceConfig{
			Name:     name,
			Currency: "USD",
		},
		Storage: StorageConfig{
			Backend:    BackendCSV,
			SQLitePath: "data/greenbacks.db",
		},
		Dashboard: DashboardConfig{
			VisibleTags:      5,
			ProjectionMonths: 3,
			TrendMonths:      12,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Greenbacks",
			AuthorEmail: "greenbacks@localhost",
		},
		LogLevel: "info",
	}
}

// ApplyEnv overrides fields from GREENBACKS_* environment variables.
func (c *Config) ApplyEnv() {
	c.Storage.Backend = getEnv("GREENBACKS_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.SQLitePath = getEnv("GREENBACKS_SQLITE_PATH", c.Storage.SQLitePath)
	c.LogLevel = getEnv("GREENBACKS_LOG_LEVEL", c.LogLevel)
	c.Dashboard.VisibleTags = getEnvInt("GREENBACKS_VISIBLE_TAGS", c.Dashboard.VisibleTags)
	c.Git.AutoCommit = getEnvBool("GREENBACKS_GIT_AUTO_COMMIT", c.Git.AutoCommit)
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	switch c.Storage.Backend {
	case BackendCSV:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			problems = append(problems, "storage.sqlite_path is required for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid storage backend %q: must be one of csv, sqlite", c.Storage.Backend))
	}

	if c.Dashboard.ProjectionMonths < 1 {
		problems = append(problems, "dashboard.projection_months must be at least 1")
	}
	if c.Dashboard.TrendMonths < 1 {
		problems = append(problems, "dashboard.trend_months must be at least 1")
	}

	seen := make(map[string]bool)
	for _, f := range c.Feeds {
		if f.Name == "" || f.AccountID == "" {
			problems = append(problems, fmt.Sprintf("feed %q needs a name and account_id", f.Name))
		}
		if seen[f.Name] {
			problems = append(problems, fmt.Sprintf("duplicate feed %q", f.Name))
		}
		seen[f.Name] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Feed returns the feed with name.
func (c *Config) Feed(name string) (Feed, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return Feed{}, false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}
