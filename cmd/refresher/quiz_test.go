package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficulty_Set(t *testing.T) {
	tests := []struct {
		value   string
		want    Difficulty
		wantErr bool
	}{
		{value: "mixed", want: "mixed"},
		{value: "beginner", want: "beginner"},
		{value: "intermediate", want: "intermediate"},
		{value: "advanced", want: "advanced"},
		{value: "expert", wantErr: true},
		{value: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var d Difficulty
			err := d.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, "difficulty", d.Type())
		})
	}
}

func TestNewQuizCommand(t *testing.T) {
	cmd := newQuizCommand()
	assert.Equal(t, "quiz <subject>", cmd.Use)

	tests := []struct {
		flag       string
		defaultVal string
	}{
		{flag: "count", defaultVal: "10"},
		{flag: "difficulty", defaultVal: ""},
		{flag: "no-adaptive", defaultVal: "false"},
		{flag: "time-limit", defaultVal: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			assert.Equal(t, tt.defaultVal, flag.DefValue)
		})
	}
}

func TestQuizCommand(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		args         []string
		wantErr      string
		wantContains []string
		wantProgress string
	}{
		{
			name:         "completes a quiz and records progress",
			input:        "A\nA\nA\n",
			args:         []string{"algorithms", "--count", "3", "--difficulty", "beginner", "--time-limit", "600"},
			wantContains: []string{"Subject algorithms quiz", "Question 3/3", "Score: 3/3 (100%)"},
			wantProgress: "Questions answered: 3 (3 correct, 100.0%)",
		},
		{
			name:         "count smaller than the subject",
			input:        "B\n",
			args:         []string{"databases", "--count", "1", "--no-adaptive"},
			wantContains: []string{"Question 1/1", "Wrong. The answer is A) first", "Score: 0/1 (0%)"},
			wantProgress: "Questions answered: 1 (0 correct, 0.0%)",
		},
		{
			name:         "abandoned quiz records answers but no session",
			input:        "A\nq\ny\n",
			args:         []string{"algorithms"},
			wantContains: []string{"Quiz abandoned."},
			wantProgress: "Sessions: 0",
		},
		{
			name:    "unknown subject",
			args:    []string{"unknown"},
			wantErr: `Run "refresher subjects" to list the subjects`,
		},
		{
			name:    "invalid difficulty",
			args:    []string{"algorithms", "--difficulty", "expert"},
			wantErr: "invalid difficulty: expert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, configPath := setupWorkspace(t)

			got, err := runCommand(t, tt.input, append([]string{"quiz", "--config", configPath}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}

			progress, err := runCommand(t, "", "progress", "--config", configPath)
			require.NoError(t, err)
			assert.Contains(t, progress, tt.wantProgress)
		})
	}
}
