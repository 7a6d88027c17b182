package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/refresher/internal/assistant"
	"github.com/at-ishikawa/refresher/internal/catalog"
)

type fakeResponder struct {
	messages []string
}

func (f *fakeResponder) Respond(_ context.Context, message string) assistant.Reply {
	f.messages = append(f.messages, message)
	if assistant.DetectIntent(message) == assistant.IntentQuiz {
		q := testQuestion("chat", "Sorting")
		return assistant.Reply{Text: "Here is a question.", Intent: assistant.IntentQuiz, Fallback: true, Question: &q}
	}
	return assistant.Reply{Text: "Happy to help.", Intent: assistant.IntentGeneral}
}

func TestChatCLI_Run(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantMessages []string
		wantContains []string
		wantMissing  []string
	}{
		{
			name:         "grades the answer to a quiz reply",
			input:        "give me a quiz\nA\nexit\n",
			wantMessages: []string{"give me a quiz"},
			wantContains: []string{"assistant> Here is a question.", "(offline response)", "Correct!", "Because of chat."},
		},
		{
			name:         "wrong answer shows the correct option",
			input:        "quiz please\nc\nquit\n",
			wantMessages: []string{"quiz please"},
			wantContains: []string{"Not quite. The answer is A) first"},
		},
		{
			name:         "letters are messages when no question is pending",
			input:        "hello\nA\n",
			wantMessages: []string{"hello", "A"},
			wantContains: []string{"assistant> Happy to help."},
			wantMissing:  []string{"Correct!", "(offline response)"},
		},
		{
			name:         "a question is graded once",
			input:        "quiz\nA\nB\n",
			wantMessages: []string{"quiz", "B"},
		},
		{
			name:  "blank lines are ignored",
			input: "\n\nEXIT\nhello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &fakeResponder{}
			output := &bytes.Buffer{}
			chat := NewChatCLI(NewInteractiveCLI(strings.NewReader(tt.input), output), responder)

			chat.Greet()
			require.NoError(t, chat.Run(context.Background(), chat))

			assert.Equal(t, tt.wantMessages, responder.messages)
			got := output.String()
			assert.Contains(t, got, "Learning assistant")
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
			for _, missing := range tt.wantMissing {
				assert.NotContains(t, got, missing)
			}
		})
	}
}

func TestChatCLI_Say(t *testing.T) {
	responder := &fakeResponder{}
	output := &bytes.Buffer{}
	chat := NewChatCLI(NewInteractiveCLI(strings.NewReader(""), output), responder)

	chat.Say(context.Background(), "generate a question")
	require.NotNil(t, chat.pending)
	assert.Equal(t, catalog.DifficultyBeginner, chat.pending.Difficulty)
	assert.Contains(t, output.String(), "assistant> Here is a question.\n")
}
