package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/refresher/internal/analytics"
)

func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:     StorageFile,
			FilePath:   filepath.Join("data", "progress.json"),
			SQLitePath: filepath.Join("data", "refresher.db"),
			Key:        "conceptRefresher_progress",
			Migrate:    true,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     3306,
			Database: "refresher",
			Username: "user",
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Quiz: QuizConfig{
			QuestionCount:      10,
			Difficulty:         "mixed",
			AdaptiveLearning:   true,
			WeakTopicBelow:     0.7,
			StrongTopicFrom:    0.8,
			StreakPassAccuracy: 70,
		},
		Analytics: analytics.DefaultThresholds(),
		Assistant: AssistantConfig{
			Provider:       ProviderNone,
			TimeoutSeconds: 30,
			DefaultSubject: "data_structures",
		},
		OpenAI: OpenAIConfig{Model: "gpt-4o-mini", RetryAttempts: 3},
		Local: LocalModelConfig{
			BaseURL:          "http://localhost:11434/v1",
			Model:            "llama3.2:1b",
			LoadAttempts:     10,
			LoadDelaySeconds: 2,
		},
		Server: ServerConfig{
			Port: 8080,
			CORS: CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		},
		Outputs: OutputsConfig{ReportDirectory: filepath.Join("outputs", "reports")},
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "DB_PASSWORD", "REDIS_PASSWORD"} {
		t.Setenv(env, "")
	}
}

func TestConfigLoader_Load(t *testing.T) {
	templateFile := filepath.Join(t.TempDir(), "report.md.tmpl")
	require.NoError(t, os.WriteFile(templateFile, []byte("# {{ .Title }}"), 0644))

	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		want              func(cfg *Config)
		wantErrorContains []string
	}{
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          func(cfg *Config) {},
		},
		{
			name: "valid config file with custom values",
			configContent: `storage:
  driver: sqlite3
  sqlite_path: custom/progress.db
quiz:
  question_count: 5
  difficulty: advanced
  adaptive_learning: false
analytics:
  weak_accuracy: 0.5
assistant:
  provider: local
  timeout_seconds: 10
server:
  port: 9090
  cors:
    allowed_origins:
      - http://example.com
`,
			want: func(cfg *Config) {
				cfg.Storage.Driver = StorageSQLite
				cfg.Storage.SQLitePath = "custom/progress.db"
				cfg.Quiz.QuestionCount = 5
				cfg.Quiz.Difficulty = "advanced"
				cfg.Quiz.AdaptiveLearning = false
				cfg.Analytics.WeakAccuracy = 0.5
				cfg.Assistant.Provider = ProviderLocal
				cfg.Assistant.TimeoutSeconds = 10
				cfg.Server.Port = 9090
				cfg.Server.CORS.AllowedOrigins = []string{"http://example.com"}
			},
		},
		{
			name: "explicit config file path with a template",
			configContent: `templates:
  report_template: ` + templateFile + `
outputs:
  report_directory: explicit/reports
`,
			useExplicitPath: true,
			want: func(cfg *Config) {
				cfg.Templates.ReportTemplate = templateFile
				cfg.Outputs.ReportDirectory = "explicit/reports"
			},
		},
		{
			name: "secrets come from the environment",
			configContent: `assistant:
  provider: openai
`,
			env: map[string]string{
				"OPENAI_API_KEY": "sk-test",
				"OPENAI_MODEL":   "gpt-4o",
				"DB_PASSWORD":    "db-secret",
				"REDIS_PASSWORD": "redis-secret",
			},
			want: func(cfg *Config) {
				cfg.Assistant.Provider = ProviderOpenAI
				cfg.OpenAI.APIKey = "sk-test"
				cfg.OpenAI.Model = "gpt-4o"
				cfg.Database.Password = "db-secret"
				cfg.Redis.Password = "redis-secret"
			},
		},
		{
			name: "invalid YAML format",
			configContent: `storage:
  driver: file
  invalid yaml format here [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "unknown storage driver",
			configContent: `storage:
  driver: postgres
`,
			wantErrorContains: []string{"invalid configuration", "driver must be one of [file memory mysql sqlite3 redis]"},
		},
		{
			name: "unknown difficulty",
			configContent: `quiz:
  difficulty: expert
`,
			wantErrorContains: []string{"difficulty must be one of [beginner intermediate advanced mixed]"},
		},
		{
			name: "missing template file",
			configContent: `templates:
  report_template: /nonexistent/report.md.tmpl
`,
			wantErrorContains: []string{"templates.report_template must be an existing and readable file"},
		},
		{
			name: "openai provider without an API key",
			configContent: `assistant:
  provider: openai
`,
			wantErrorContains: []string{"openai.api_key is a required field"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			tempDir := t.TempDir()
			t.Setenv("HOME", tempDir)

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "refresher.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644))
				}
				t.Chdir(tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if len(tt.wantErrorContains) > 0 {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			want := defaultConfig()
			tt.want(want)
			assert.Equal(t, want, got)
		})
	}
}
