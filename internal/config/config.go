package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"adaptive-quiz-service/internal/app"
	"adaptive-quiz-service/internal/llm"
	"adaptive-quiz-service/internal/questiongen"
	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Cache     CacheConfig     `yaml:"cache"`
	Generator GeneratorConfig `yaml:"generator"`
	Inventory InventoryConfig `yaml:"inventory"`
	Quiz      QuizConfig      `yaml:"quiz"`
	Log       LogConfig       `yaml:"log"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

// CacheConfig enables the in-process read-through cache in front of the
// sqlite and postgres backends when Redis is not configured. An empty TTL
// disables it.
type CacheConfig struct {
	TTL string `yaml:"ttl"`
}

// GeneratorConfig selects the content source. BankPath wins over Provider.
type GeneratorConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	BankPath    string  `yaml:"bank_path"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
	MaxAttempts int     `yaml:"max_attempts"`
}

type InventoryConfig struct {
	BatchSize       int    `yaml:"batch_size"`
	MaxEmptyBatches int    `yaml:"max_empty_batches"`
	MaxBatches      int    `yaml:"max_batches"`
	Pause           string `yaml:"pause"`
	FillTimeout     string `yaml:"fill_timeout"`
}

type QuizConfig struct {
	EvaluationCount int `yaml:"evaluation_count"`
	MainCount       int `yaml:"main_count"`
	// Seed makes question sampling reproducible. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// LogConfig adds a rotating log file next to stderr when File is set.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a configuration that runs fully offline-capable on local files.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:    BackendFile,
			Dir:        "quiz_data",
			SQLitePath: "quiz_data/quiz.db",
		},
		Redis: RedisConfig{TTL: "30m"},
		Generator: GeneratorConfig{
			Provider:    "openai",
			MaxTokens:   8192,
			Temperature: 0.7,
			Timeout:     "90s",
			MaxAttempts: 3,
		},
		Inventory: InventoryConfig{
			BatchSize:       10,
			MaxEmptyBatches: 3,
			MaxBatches:      10,
			Pause:           "2s",
			FillTimeout:     "5m",
		},
		Quiz: QuizConfig{
			EvaluationCount: app.EvaluationCount,
			MainCount:       app.MainQuizCount,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads YAML config from path on top of Default. A missing file yields
// the defaults together with an error wrapping fs.ErrNotExist.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load that tolerates a missing file.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	return cfg, err
}

// ApplyEnv overlays QUIZ_* variables. Provider credentials are resolved
// later by LLMConfig.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("QUIZ_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("QUIZ_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("QUIZ_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("QUIZ_POSTGRES_URL"); v != "" {
		c.Postgres.URL = v
	}
	if v := os.Getenv("QUIZ_BANK_PATH"); v != "" {
		c.Generator.BankPath = v
	}
	if v := os.Getenv("QUIZ_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Quiz.Seed = seed
		}
	}
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("storage.dir is required for the file backend")
		}
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("storage.sqlite_path is required for the sqlite backend")
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for the postgres backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Quiz.EvaluationCount < 0 || c.Quiz.MainCount < 0 {
		return fmt.Errorf("quiz question counts must not be negative")
	}
	return nil
}

// LLMConfig builds the provider configuration: YAML first, then QUIZ_LLM_*
// variables, then the provider's standard key variable.
func (c Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	if c.Generator.Provider != "" {
		out.Provider = c.Generator.Provider
	}
	switch out.Provider {
	case "openai":
		override(&out.OpenAI.Model, c.Generator.Model)
		out.OpenAI.APIKey = c.Generator.APIKey
		out.OpenAI.BaseURL = c.Generator.BaseURL
	case "anthropic":
		override(&out.Anthropic.Model, c.Generator.Model)
		out.Anthropic.APIKey = c.Generator.APIKey
	case "gemini":
		override(&out.Gemini.Model, c.Generator.Model)
		out.Gemini.APIKey = c.Generator.APIKey
	case "openrouter":
		override(&out.OpenRouter.Model, c.Generator.Model)
		out.OpenRouter.APIKey = c.Generator.APIKey
		if c.Generator.BaseURL != "" {
			out.OpenRouter.BaseURL = c.Generator.BaseURL
		}
	}
	if c.Generator.MaxAttempts > 0 {
		out.Retry.MaxAttempts = c.Generator.MaxAttempts
	}

	out.ApplyEnv()
	out.DiscoverAPIKey()
	return out
}

func (c Config) QuestionGenConfig() questiongen.Config {
	out := questiongen.DefaultConfig()
	if c.Generator.MaxTokens > 0 {
		out.MaxTokens = c.Generator.MaxTokens
	}
	if c.Generator.Temperature > 0 {
		out.Temperature = c.Generator.Temperature
	}
	out.Timeout = TTLDuration(c.Generator.Timeout, out.Timeout)
	return out
}

func (c Config) InventoryPolicy() app.InventoryPolicy {
	def := app.DefaultInventoryPolicy()
	return app.InventoryPolicy{
		BatchSize:       c.Inventory.BatchSize,
		MaxEmptyBatches: c.Inventory.MaxEmptyBatches,
		MaxBatches:      c.Inventory.MaxBatches,
		Pause:           TTLDuration(c.Inventory.Pause, def.Pause),
		FillTimeout:     TTLDuration(c.Inventory.FillTimeout, def.FillTimeout),
	}
}

func (c Config) QuizCounts() app.QuizCounts {
	return app.QuizCounts{Evaluation: c.Quiz.EvaluationCount, Main: c.Quiz.MainCount}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// override replaces dst when v is set.
func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
