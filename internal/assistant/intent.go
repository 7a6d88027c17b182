package assistant

import "strings"

type Intent string

const (
	IntentQuiz      Intent = "quiz"
	IntentStudyPlan Intent = "study_plan"
	IntentGeneral   Intent = "general"
)

var (
	quizKeywords      = []string{"question", "quiz", "generate"}
	studyPlanKeywords = []string{"study plan", "schedule"}
)

// DetectIntent classifies a chat message by keyword. Quiz keywords win over study plan keywords.
func DetectIntent(message string) Intent {
	lower := strings.ToLower(message)
	if containsAny(lower, quizKeywords) {
		return IntentQuiz
	}
	if containsAny(lower, studyPlanKeywords) {
		return IntentStudyPlan
	}
	return IntentGeneral
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
