package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"docchat/pkg/corpus"
	"docchat/pkg/extract"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// Config represents configuration loaded from YAML with environment
// variable overrides for secrets and deploy-specific values.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	JWTSecret  string `yaml:"jwtSecret"`
	SessionTTL string `yaml:"sessionTTL"`
	AdminEmail string `yaml:"adminEmail"`

	LLMBaseURL    string `yaml:"llmBaseURL"`
	LLMAPIKey     string `yaml:"llmAPIKey"`
	LLMModel      string `yaml:"llmModel"`
	AnswerTimeout string `yaml:"answerTimeout"`

	MaxUploadBytes  int64 `yaml:"maxUploadBytes"`
	MaxCorpusBytes  int64 `yaml:"maxCorpusBytes"`
	MaxContextChars int   `yaml:"maxContextChars"`
	HistoryLimit    int   `yaml:"historyLimit"`

	RegisterRateLimitPerMinute int `yaml:"registerRateLimitPerMinute"`
	LoginRateLimitPerMinute    int `yaml:"loginRateLimitPerMinute"`
	QueryRateLimitPerMinute    int `yaml:"queryRateLimitPerMinute"`

	// Optional raw-upload archive. Archiving is disabled when the
	// endpoint is empty.
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (Config, error) {
	cfg := Config{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLMAPIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLMModel = v
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MAX_CORPUS_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("parse MAX_CORPUS_BYTES: %w", err)
		}
		cfg.MaxCorpusBytes = n
	}
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = extract.MaxFileBytes
	}
	if cfg.MaxCorpusBytes <= 0 {
		cfg.MaxCorpusBytes = corpus.DefaultMaxBytes
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = 12000
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.RegisterRateLimitPerMinute <= 0 {
		cfg.RegisterRateLimitPerMinute = 5
	}
	if cfg.LoginRateLimitPerMinute <= 0 {
		cfg.LoginRateLimitPerMinute = 10
	}
	if cfg.QueryRateLimitPerMinute <= 0 {
		cfg.QueryRateLimitPerMinute = 30
	}
}

func validateConfig(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.RedisAddr == "" {
		return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwtSecret is required (set in config.yaml or JWT_SECRET)")
	}
	if cfg.LLMBaseURL == "" {
		return errors.New("config: llmBaseURL is required (set in config.yaml or LLM_BASE_URL)")
	}
	if cfg.LLMModel == "" {
		return errors.New("config: llmModel is required (set in config.yaml or LLM_MODEL)")
	}
	if cfg.SessionTTL != "" {
		if _, err := time.ParseDuration(cfg.SessionTTL); err != nil {
			return fmt.Errorf("config: invalid sessionTTL: %w", err)
		}
	}
	if cfg.AnswerTimeout != "" {
		if _, err := time.ParseDuration(cfg.AnswerTimeout); err != nil {
			return fmt.Errorf("config: invalid answerTimeout: %w", err)
		}
	}
	return nil
}

// ParseSessionTTL returns the configured session lifetime, or zero to let
// the session manager pick its default.
func (c Config) ParseSessionTTL() time.Duration {
	if c.SessionTTL == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.SessionTTL)
	return d
}

// ParseAnswerTimeout returns the configured LLM call deadline, or zero to
// let the application pick its default.
func (c Config) ParseAnswerTimeout() time.Duration {
	if c.AnswerTimeout == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.AnswerTimeout)
	return d
}
