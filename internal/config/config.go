package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"paperrag/internal/domain"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size" toml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" toml:"chunk_overlap"`
}

// IndexConfig configures the vector index and retrieval.
type IndexConfig struct {
	Path                string  `yaml:"path" toml:"path"`
	TopK                int     `yaml:"top_k" toml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" toml:"similarity_threshold"`
	MaxVocabularyTerms  int     `yaml:"max_vocabulary_terms" toml:"max_vocabulary_terms"`
}

// RegistryConfig selects where the list of ingested papers is kept.
type RegistryConfig struct {
	Type       string `yaml:"type" toml:"type"`
	SQLitePath string `yaml:"sqlite_path,omitempty" toml:"sqlite_path,omitempty"`
}

// OpenAIGeneratorConfig holds configuration for the OpenAI-compatible generator.
type OpenAIGeneratorConfig struct {
	BaseURL           string `yaml:"base_url" toml:"base_url"`
	APIKeyEnv         string `yaml:"api_key_env" toml:"api_key_env"`
	Model             string `yaml:"model" toml:"model"`
	TimeoutSecs       int    `yaml:"timeout_secs" toml:"timeout_secs"`
	MaxTokens         int    `yaml:"max_tokens" toml:"max_tokens"`
	SummaryMaxTokens  int    `yaml:"summary_max_tokens" toml:"summary_max_tokens"`
	MaxRetries        int    `yaml:"max_retries" toml:"max_retries"`
	RequestsPerMinute int    `yaml:"requests_per_minute" toml:"requests_per_minute"`
}

// GeneratorConfig selects and configures the answer generator.
type GeneratorConfig struct {
	Type   string                 `yaml:"type" toml:"type"`
	OpenAI *OpenAIGeneratorConfig `yaml:"openai,omitempty" toml:"openai,omitempty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Verbose bool `yaml:"verbose" toml:"verbose"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker   ChunkerConfig   `yaml:"chunker" toml:"chunker"`
	Index     IndexConfig     `yaml:"index" toml:"index"`
	Registry  RegistryConfig  `yaml:"registry" toml:"registry"`
	Generator GeneratorConfig `yaml:"generator" toml:"generator"`
	Log       LogConfig       `yaml:"log" toml:"log"`
}

// Load reads a config from path; the format follows the extension (.toml, else YAML).
// If the file does not exist, defaults are returned.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/paperrag/config.yaml.
// If neither exists, it writes defaults to ~/.config/paperrag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings that cannot produce a working system.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Chunker.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("chunker.chunk_size must be positive, got %d", c.Chunker.ChunkSize))
	}
	if c.Chunker.ChunkOverlap < 0 {
		errs = append(errs, fmt.Errorf("chunker.chunk_overlap must not be negative, got %d", c.Chunker.ChunkOverlap))
	}
	if c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		errs = append(errs, fmt.Errorf("chunker.chunk_overlap (%d) must be smaller than chunk_size (%d)",
			c.Chunker.ChunkOverlap, c.Chunker.ChunkSize))
	}
	if c.Index.TopK <= 0 {
		errs = append(errs, fmt.Errorf("index.top_k must be positive, got %d", c.Index.TopK))
	}
	if c.Index.SimilarityThreshold < 0 || c.Index.SimilarityThreshold >= 1 {
		errs = append(errs, fmt.Errorf("index.similarity_threshold must be in [0,1), got %g", c.Index.SimilarityThreshold))
	}
	if c.Index.MaxVocabularyTerms <= 0 {
		errs = append(errs, fmt.Errorf("index.max_vocabulary_terms must be positive, got %d", c.Index.MaxVocabularyTerms))
	}
	switch c.Registry.Type {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown registry type %q", c.Registry.Type))
	}
	switch c.Generator.Type {
	case "none":
	case "openai":
		if c.Generator.OpenAI == nil {
			errs = append(errs, errors.New("generator.openai config missing"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown generator type %q", c.Generator.Type))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "paperrag", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Chunker: ChunkerConfig{ChunkSize: 500, ChunkOverlap: 50},
		Index: IndexConfig{
			Path:                "rag_index",
			TopK:                5,
			SimilarityThreshold: 0.1,
			MaxVocabularyTerms:  1000,
		},
		Registry:  RegistryConfig{Type: "memory"},
		Generator: GeneratorConfig{Type: "none"},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := Default()
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = def.Chunker.ChunkSize
		if cfg.Chunker.ChunkOverlap == 0 {
			cfg.Chunker.ChunkOverlap = def.Chunker.ChunkOverlap
		}
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = def.Index.Path
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = def.Index.TopK
	}
	if cfg.Index.MaxVocabularyTerms == 0 {
		cfg.Index.MaxVocabularyTerms = def.Index.MaxVocabularyTerms
	}
	if cfg.Registry.Type == "" {
		cfg.Registry.Type = def.Registry.Type
	}
	if cfg.Registry.Type == "sqlite" && cfg.Registry.SQLitePath == "" {
		cfg.Registry.SQLitePath = cfg.Index.Path + "_papers.db"
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = def.Generator.Type
	}
	if cfg.Generator.Type == "openai" && cfg.Generator.OpenAI != nil {
		o := cfg.Generator.OpenAI
		if o.BaseURL == "" {
			o.BaseURL = "https://api.openai.com/v1"
		}
		if o.APIKeyEnv == "" {
			o.APIKeyEnv = "OPENAI_API_KEY"
		}
		if o.Model == "" {
			o.Model = "gpt-4o-mini"
		}
		if o.TimeoutSecs == 0 {
			o.TimeoutSecs = 60
		}
		if o.MaxTokens == 0 {
			o.MaxTokens = 1000
		}
		if o.SummaryMaxTokens == 0 {
			o.SummaryMaxTokens = 500
		}
		if o.RequestsPerMinute == 0 {
			o.RequestsPerMinute = 30
		}
	}
}
