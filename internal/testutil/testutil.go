// Package testutil provides shared test helpers for creating config files and subject fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/refresher/internal/catalog"
)

// SetupTestConfig creates a config file that keeps every file the commands write inside tmpDir.
// Subjects are read from <tmpDir>/subjects. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"subjects", "data", "reports"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`catalog:
  directory: %s
storage:
  driver: file
  file_path: %s
outputs:
  report_directory: %s
assistant:
  provider: none
`,
		filepath.Join(tmpDir, "subjects"),
		filepath.Join(tmpDir, "data", "progress.json"),
		filepath.Join(tmpDir, "reports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file that selects the OpenAI provider with a fake key.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte("openai:\n  api_key: fake-key-for-testing\n  model: gpt-4o-mini\n")...)
	require.NoError(t, os.WriteFile(cfgPath, replaceProvider(content, "openai"), 0644))
	return cfgPath
}

func replaceProvider(content []byte, provider string) []byte {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return content
	}
	doc["assistant"] = map[string]any{"provider": provider}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return content
	}
	return out
}

// SubjectOption configures optional fields when creating a subject fixture.
type SubjectOption func(*subjectConfig)

type subjectConfig struct {
	questions int
	correct   int
	topics    []string
}

// WithQuestionCount sets how many questions the subject has. Defaults to 3.
func WithQuestionCount(n int) SubjectOption {
	return func(cfg *subjectConfig) {
		cfg.questions = n
	}
}

// WithCorrectOption sets the correct option index of every question. Defaults to 0.
func WithCorrectOption(index int) SubjectOption {
	return func(cfg *subjectConfig) {
		cfg.correct = index
	}
}

// WithTopics sets the topics questions are spread over.
func WithTopics(topics ...string) SubjectOption {
	return func(cfg *subjectConfig) {
		cfg.topics = topics
	}
}

// CreateSubject writes <dir>/<key>.yml in the catalog format and returns the subject it wrote.
func CreateSubject(t *testing.T, dir, key string, opts ...SubjectOption) catalog.Subject {
	t.Helper()

	cfg := subjectConfig{
		questions: 3,
		topics:    []string{"Basics"},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	subject := catalog.Subject{
		Key:         key,
		Name:        "Subject " + key,
		Icon:        "*",
		Description: "Test subject " + key,
		Difficulty:  string(catalog.DifficultyBeginner),
		Topics:      cfg.topics,
	}
	for i := range cfg.questions {
		subject.Questions = append(subject.Questions, catalog.Question{
			ID:          fmt.Sprintf("%s-%d", key, i+1),
			Question:    fmt.Sprintf("Question %d of %s?", i+1, key),
			Options:     []string{"first", "second", "third", "fourth"},
			Correct:     cfg.correct,
			Explanation: fmt.Sprintf("Explanation %d.", i+1),
			Difficulty:  catalog.DifficultyBeginner,
			Topic:       cfg.topics[i%len(cfg.topics)],
		})
	}

	data, err := yaml.Marshal(subject)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".yml"), data, 0644))
	return subject
}
