package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CorpusConfig describes where documents are read from.
type CorpusConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
}

// StoreConfig describes where snapshots are persisted.
type StoreConfig struct {
	Dir           string `yaml:"dir"`
	KeepSnapshots int    `yaml:"keep_snapshots"`
}

// VectorizerConfig configures the TF-IDF model.
type VectorizerConfig struct {
	Stopwords string `yaml:"stopwords"`
}

// RetrieverConfig configures query-time behaviour.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// LLMConfig holds configuration for the OpenAI-compatible chat model.
// An empty Model disables the language-model step.
type LLMConfig struct {
	BaseURL         string  `yaml:"base_url"`
	APIKeyEnv       string  `yaml:"api_key_env"`
	Model           string  `yaml:"model"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
	Temperature     float64 `yaml:"temperature"`
	MaxContextChars int     `yaml:"max_context_chars"`
}

// SummarizerConfig configures the offline extractive answer.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus     CorpusConfig     `yaml:"corpus"`
	Store      StoreConfig      `yaml:"store"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Retriever  RetrieverConfig  `yaml:"retriever"`
	LLM        LLMConfig        `yaml:"llm"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// DefaultExtensions is the file allow-list used when none is configured.
var DefaultExtensions = []string{".py", ".md", ".txt", ".json", ".sol"}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/rag/config.yaml.
// If neither exists, it writes defaults to ~/.config/rag/config.yaml and returns them.
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
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports settings that load fine but are likely mistakes.
func (c *AppConfig) Validate() []string {
	var warnings []string
	if c.LLM.Model != "" && os.Getenv(c.LLM.APIKeyEnv) == "" {
		warnings = append(warnings, fmt.Sprintf("llm model %q is configured but %s is not set", c.LLM.Model, c.LLM.APIKeyEnv))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2.0 {
		warnings = append(warnings, fmt.Sprintf("llm temperature %.2f is outside [0.0, 2.0]", c.LLM.Temperature))
	}
	if c.Vectorizer.Stopwords != "" && c.Vectorizer.Stopwords != "english" {
		warnings = append(warnings, fmt.Sprintf("unknown stopwords list %q; no stop words will be removed", c.Vectorizer.Stopwords))
	}
	for _, ext := range c.Corpus.Extensions {
		if len(ext) == 0 || ext[0] != '.' {
			warnings = append(warnings, fmt.Sprintf("extension %q should start with a dot", ext))
		}
	}
	return warnings
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "rag", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Corpus:     CorpusConfig{Root: "data", Extensions: append([]string(nil), DefaultExtensions...)},
		Store:      StoreConfig{Dir: "vector_store", KeepSnapshots: 3},
		Retriever:  RetrieverConfig{TopK: 3},
		Summarizer: SummarizerConfig{MaxSentences: 5},
		Log:        LogConfig{Level: "info", Format: "text"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Corpus.Root == "" {
		cfg.Corpus.Root = "data"
	}
	if len(cfg.Corpus.Extensions) == 0 {
		cfg.Corpus.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Store.Dir == "" {
		cfg.Store.Dir = "vector_store"
	}
	if cfg.Store.KeepSnapshots == 0 {
		cfg.Store.KeepSnapshots = 3
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 3
	}
	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 5
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 60
	}
	if cfg.LLM.MaxContextChars == 0 {
		cfg.LLM.MaxContextChars = 4000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
