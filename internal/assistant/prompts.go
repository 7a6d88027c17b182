package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/refresher/internal/catalog"
)

const (
	questionMaxTokens  = 300
	studyPlanMaxTokens = 400
	generalMaxTokens   = 200
	feedbackMaxTokens  = 150
)

var (
	optionLetters = []string{"A", "B", "C", "D"}

	errMalformedQuestion = errors.New("generated question is malformed")
)

func questionPrompt(subject string, difficulty catalog.Difficulty, topic string) string {
	focus := ""
	if topic != "" {
		focus = " focusing on " + topic
	}
	return fmt.Sprintf(`Generate a %s level multiple choice question about %s%s.

Format your response exactly like this:
QUESTION: [Your question here]
A) [Option A]
B) [Option B]
C) [Option C]
D) [Option D]
CORRECT: [A, B, C, or D]
EXPLANATION: [Brief explanation of why the answer is correct]

Make it educational and engaging.`, difficulty, subject, focus)
}

// parseQuestion reads a question written in the QUESTION/A)-D)/CORRECT/EXPLANATION format.
// An unknown correct letter selects the first option.
func parseQuestion(response string) (catalog.Question, error) {
	var q catalog.Question
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "QUESTION:"):
			q.Question = strings.TrimSpace(strings.TrimPrefix(line, "QUESTION:"))
		case len(line) >= 2 && line[0] >= 'A' && line[0] <= 'D' && line[1] == ')':
			q.Options = append(q.Options, strings.TrimSpace(line[2:]))
		case strings.HasPrefix(line, "CORRECT:"):
			letter := strings.TrimSpace(strings.TrimPrefix(line, "CORRECT:"))
			for i, l := range optionLetters {
				if strings.HasPrefix(letter, l) {
					q.Correct = i
					break
				}
			}
		case strings.HasPrefix(line, "EXPLANATION:"):
			q.Explanation = strings.TrimSpace(strings.TrimPrefix(line, "EXPLANATION:"))
		}
	}
	if q.Question == "" || len(q.Options) != len(optionLetters) || q.Explanation == "" {
		return catalog.Question{}, fmt.Errorf("%d options: %w", len(q.Options), errMalformedQuestion)
	}
	return q, nil
}

func formatQuestion(q catalog.Question, subjectName string, generated bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here's a %s level question about %s:\n\n**%s**\n\n", q.Difficulty, subjectName, q.Question)
	for i, option := range q.Options {
		fmt.Fprintf(&b, "%s) %s\n", optionLetters[i], option)
	}
	if generated {
		b.WriteString("\n*This question was generated by the AI model! Try answering it, and I can provide the correct answer and explanation.*")
	} else {
		b.WriteString("\n*Try answering it, and I can provide the correct answer and explanation.*")
	}
	return b.String()
}

// performanceSummary is the data handed to the model for a study plan.
type performanceSummary struct {
	TotalQuestions int      `json:"totalQuestions"`
	CorrectAnswers int      `json:"correctAnswers"`
	Accuracy       float64  `json:"accuracy"`
	WeakTopics     []string `json:"weakTopics"`
	StrongTopics   []string `json:"strongTopics"`
	Subjects       []string `json:"subjects"`
}

func studyPlanPrompt(summary performanceSummary) (string, error) {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("json.MarshalIndent() > %w", err)
	}
	return fmt.Sprintf(`Create a personalized study plan based on this performance data:
%s

Subjects: %s

Provide 3-5 specific recommendations focusing on weak areas and building on strengths.`,
		data, strings.Join(summary.Subjects, ", ")), nil
}

func generalPrompt(message string) string {
	return fmt.Sprintf(`You are a helpful AI learning assistant. The user said: "%s".

Provide a helpful, educational response that:
1. Directly addresses their question or comment
2. Offers additional learning insights when relevant
3. Stays focused on educational topics
4. Is encouraging and supportive
5. Keeps the response under 150 words

Be conversational but informative.`, message)
}

func feedbackPrompt(q catalog.Question, selected int, correct bool, timeSpent int64) string {
	result := "incorrectly"
	if correct {
		result = "correctly"
	}
	selectedText := ""
	if selected >= 0 && selected < len(q.Options) {
		selectedText = q.Options[selected]
	}
	return fmt.Sprintf(`A student answered a quiz question %s in %d seconds.

Question: %s
Student selected: %s
Correct answer: %s

Provide encouraging feedback with:
1. A motivational message (max 20 words)
2. Learning tip related to this topic (max 30 words)

Format:
ENCOURAGEMENT: [Your encouraging message]
TIP: [Your learning tip]`, result, (timeSpent+500)/1000, q.Question, selectedText, q.CorrectOption())
}

func parseFeedback(response string) (encouragement, tip string) {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "ENCOURAGEMENT:"):
			encouragement = strings.TrimSpace(strings.TrimPrefix(line, "ENCOURAGEMENT:"))
		case strings.HasPrefix(line, "TIP:"):
			tip = strings.TrimSpace(strings.TrimPrefix(line, "TIP:"))
		}
	}
	return encouragement, tip
}
