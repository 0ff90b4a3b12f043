// Package config loads the application configuration from a YAML file,
// HUMANTONE_-prefixed environment variables, and a .env bootstrap file, in
// that order of increasing precedence. Required credentials are validated at
// load time so a misconfigured process fails before serving its first run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full application configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Store     StoreConfig     `mapstructure:"store"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PipelineConfig struct {
	MaxIterations    int     `mapstructure:"max_iterations"`
	QualityThreshold float64 `mapstructure:"quality_threshold"`
	RetrievalLimit   int     `mapstructure:"retrieval_limit"`
}

// LLMConfig configures the chat-completions services behind the analyser,
// transformer, and judge. Provider selects the transformer backend; the
// analyser and judge always use the OpenAI-compatible endpoint because they
// need a JSON response format.
type LLMConfig struct {
	Provider         string `mapstructure:"provider"`
	APIKey           string `mapstructure:"api_key"`
	BaseURL          string `mapstructure:"base_url"`
	AnalyserModel    string `mapstructure:"analyser_model"`
	TransformerModel string `mapstructure:"transformer_model"`
	JudgeModel       string `mapstructure:"judge_model"`
	OllamaURL        string `mapstructure:"ollama_url"`
	OllamaModel      string `mapstructure:"ollama_model"`
}

type EmbeddingConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	Dimension int    `mapstructure:"dimension"`
}

type StoreConfig struct {
	// Driver is "sqlite", "postgres", or "" to run without a store
	// (retrieval then serves built-in examples only).
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type ScraperConfig struct {
	ContentDir string        `mapstructure:"content_dir"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Providers accepted by LLMConfig.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Load reads configuration. An empty path searches for humantone.yaml in the
// working directory and $HOME; a missing config file is fine, defaults and
// environment variables still apply.
func Load(path string) (*Config, error) {
	// Best-effort .env bootstrap, matching how the hosted deployment
	// supplies its API keys.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("humantone")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".humantone"))
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("HUMANTONE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The keys everyone already has exported under their conventional
	// names.
	_ = v.BindEnv("llm.api_key", "HUMANTONE_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("embedding.api_key", "HUMANTONE_EMBEDDING_API_KEY", "OPENAI_API_KEY")

	// A config file absent from the search path is fine; an explicit path
	// that fails to load is not (missing explicit files surface as path
	// errors, not ConfigFileNotFoundError).
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost:3000", "http://localhost:3001", "http://frontend:3000",
	})

	v.SetDefault("pipeline.max_iterations", 3)
	v.SetDefault("pipeline.quality_threshold", 0.75)
	v.SetDefault("pipeline.retrieval_limit", 5)

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.analyser_model", "gpt-4o-mini")
	v.SetDefault("llm.transformer_model", "gpt-4o")
	v.SetDefault("llm.judge_model", "gpt-4o-mini")
	v.SetDefault("llm.ollama_url", "http://localhost:11434")
	v.SetDefault("llm.ollama_model", "llama3.1:8b")

	v.SetDefault("embedding.enabled", true)
	v.SetDefault("embedding.base_url", "https://api.openai.com/v1")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.dimension", 1536)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "./data/humantone.db")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size_mb", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 30)
	v.SetDefault("logger.compress", true)

	v.SetDefault("scraper.content_dir", "./content")
	v.SetDefault("scraper.timeout", 30*time.Second)
}

// Validate fails fast on configuration that would only surface mid-run.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q (expected %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderOllama)
	}

	// The analyser and judge always go through the OpenAI-compatible
	// endpoint, so the key is required regardless of provider.
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required (set HUMANTONE_LLM_API_KEY or OPENAI_API_KEY)")
	}
	if c.Embedding.Enabled && strings.TrimSpace(c.Embedding.APIKey) == "" {
		return fmt.Errorf("embedding.api_key is required when embeddings are enabled")
	}

	if c.Pipeline.MaxIterations < 1 {
		return fmt.Errorf("pipeline.max_iterations must be at least 1")
	}
	if c.Pipeline.QualityThreshold < 0 || c.Pipeline.QualityThreshold > 1 {
		return fmt.Errorf("pipeline.quality_threshold must be in [0,1]")
	}
	if c.Embedding.Dimension < 1 {
		return fmt.Errorf("embedding.dimension must be positive")
	}

	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
