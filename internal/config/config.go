// Package config loads the refresher configuration from YAML, environment variables and defaults.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/at-ishikawa/refresher/internal/analytics"
	"github.com/at-ishikawa/refresher/internal/progress"
)

type Config struct {
	Catalog   CatalogConfig        `mapstructure:"catalog"`
	Storage   StorageConfig        `mapstructure:"storage"`
	Database  DatabaseConfig       `mapstructure:"database"`
	Redis     RedisConfig          `mapstructure:"redis"`
	Quiz      QuizConfig           `mapstructure:"quiz"`
	Analytics analytics.Thresholds `mapstructure:"analytics"`
	Assistant AssistantConfig      `mapstructure:"assistant"`
	OpenAI    OpenAIConfig         `mapstructure:"openai"`
	Local     LocalModelConfig     `mapstructure:"local"`
	Server    ServerConfig         `mapstructure:"server"`
	Templates TemplatesConfig      `mapstructure:"templates"`
	Outputs   OutputsConfig        `mapstructure:"outputs"`
}

type CatalogConfig struct {
	// Directory overrides the bundled subjects. Empty means the embedded catalog.
	Directory string `mapstructure:"directory" validate:"omitempty,dir"`
}

const (
	StorageFile    = "file"
	StorageMemory  = "memory"
	StorageMySQL   = "mysql"
	StorageSQLite  = "sqlite3"
	StorageRedis   = "redis"
	ProviderNone   = "none"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

type StorageConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=file memory mysql sqlite3 redis"`
	FilePath   string `mapstructure:"file_path" validate:"required_if=Driver file"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite3"`
	Key        string `mapstructure:"key" validate:"required"`
	Migrate    bool   `mapstructure:"migrate"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"min=0"`
}

type QuizConfig struct {
	QuestionCount    int    `mapstructure:"question_count" validate:"min=1"`
	Difficulty       string `mapstructure:"difficulty" validate:"oneof=beginner intermediate advanced mixed"`
	AdaptiveLearning bool   `mapstructure:"adaptive_learning"`
	// TimeLimitSeconds of 0 means no limit.
	TimeLimitSeconds   int     `mapstructure:"time_limit_seconds" validate:"min=0"`
	WeakTopicBelow     float64 `mapstructure:"weak_topic_below" validate:"gte=0,lte=1"`
	StrongTopicFrom    float64 `mapstructure:"strong_topic_from" validate:"gte=0,lte=1"`
	StreakPassAccuracy float64 `mapstructure:"streak_pass_accuracy" validate:"gte=0,lte=100"`
}

type AssistantConfig struct {
	Provider       string `mapstructure:"provider" validate:"oneof=none openai local"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1"`
	DefaultSubject string `mapstructure:"default_subject"`
}

type OpenAIConfig struct {
	APIKey        string `mapstructure:"api_key"`
	Model         string `mapstructure:"model"`
	RetryAttempts uint   `mapstructure:"retry_attempts"`
}

type LocalModelConfig struct {
	BaseURL          string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	LoadAttempts     uint   `mapstructure:"load_attempts" validate:"min=1"`
	LoadDelaySeconds int    `mapstructure:"load_delay_seconds" validate:"min=0"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type TemplatesConfig struct {
	// ReportTemplate is optional. The embedded template is used when it is empty.
	ReportTemplate string `mapstructure:"report_template" validate:"omitempty,file"`
}

type OutputsConfig struct {
	ReportDirectory string `mapstructure:"report_directory"`
}

type ConfigLoader struct {
	viper     *viper.Viper
	validator *configValidator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/refresher")
	}

	return &ConfigLoader{
		viper:     v,
		validator: validate,
	}, nil
}

// Load is a shortcut for NewConfigLoader(configFile).Load().
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("catalog.directory", "")
	v.SetDefault("storage.driver", StorageFile)
	v.SetDefault("storage.file_path", filepath.Join("data", "progress.json"))
	v.SetDefault("storage.sqlite_path", filepath.Join("data", "refresher.db"))
	v.SetDefault("storage.key", progress.DefaultStorageKey)
	v.SetDefault("storage.migrate", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "refresher")
	v.SetDefault("database.username", "user")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("quiz.question_count", 10)
	v.SetDefault("quiz.difficulty", "mixed")
	v.SetDefault("quiz.adaptive_learning", true)
	v.SetDefault("quiz.time_limit_seconds", 0)
	v.SetDefault("quiz.weak_topic_below", 0.7)
	v.SetDefault("quiz.strong_topic_from", 0.8)
	v.SetDefault("quiz.streak_pass_accuracy", progress.DefaultStreakPassAccuracy)

	thresholds := analytics.DefaultThresholds()
	v.SetDefault("analytics.weak_accuracy", thresholds.WeakAccuracy)
	v.SetDefault("analytics.strong_accuracy", thresholds.StrongAccuracy)
	v.SetDefault("analytics.min_attempts", thresholds.MinAttempts)
	v.SetDefault("analytics.max_topics", thresholds.MaxTopics)
	v.SetDefault("analytics.recent_sessions", thresholds.RecentSessions)
	v.SetDefault("analytics.min_recent_sessions", thresholds.MinRecentSessions)
	v.SetDefault("analytics.progression_accuracy", thresholds.ProgressionAccuracy)
	v.SetDefault("analytics.inactive_days", thresholds.InactiveDays)
	v.SetDefault("analytics.max_recommendations", thresholds.MaxRecommendations)

	v.SetDefault("assistant.provider", ProviderNone)
	v.SetDefault("assistant.timeout_seconds", 30)
	v.SetDefault("assistant.default_subject", "data_structures")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.retry_attempts", 3)
	v.SetDefault("local.base_url", "http://localhost:11434/v1")
	v.SetDefault("local.model", "llama3.2:1b")
	v.SetDefault("local.load_attempts", 10)
	v.SetDefault("local.load_delay_seconds", 2)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("templates.report_template", "")
	v.SetDefault("outputs.report_directory", filepath.Join("outputs", "reports"))

	// Secrets come from the environment only
	for key, env := range map[string]string{
		"openai.api_key":    "OPENAI_API_KEY",
		"openai.model":      "OPENAI_MODEL",
		"database.password": "DB_PASSWORD",
		"redis.password":    "REDIS_PASSWORD",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.check(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
