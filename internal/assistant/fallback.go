package assistant

var cannedResponses = []string{
	"That's an interesting question! While my AI model is loading, I can tell you that consistent practice is key to mastering any subject.",
	"Great question! I'm still initializing my full AI capabilities, but I'd recommend breaking down complex topics into smaller, manageable pieces.",
	"I appreciate your curiosity! Once my AI model is fully loaded, I'll be able to provide more detailed and personalized responses.",
	"Excellent! Learning is a journey, and asking questions is the best way to grow. Keep that curiosity alive!",
	"That's a thoughtful inquiry! While I'm getting my full AI capabilities ready, remember that active learning through practice and repetition is very effective.",
}

const fallbackStudyPlan = `Based on your performance, here's your personalized study plan:

1. **Focus Areas**: Concentrate on topics where your accuracy is below 70%
2. **Daily Practice**: Spend 15-20 minutes on challenging subjects
3. **Review Schedule**: Revisit completed topics every 3-5 days
4. **Progress Tracking**: Take quizzes regularly to monitor improvement
5. **Balanced Learning**: Mix difficult topics with easier ones to maintain motivation

Keep up the great work! Consistent practice leads to mastery.`

// quickAnswer is the answer time in milliseconds below which a correct answer gets the quick praise.
const quickAnswer = 10_000

var (
	quickPraise = []string{"Excellent! Quick and accurate.", "Great intuition!", "Perfect - you really know this!"}
	praise      = []string{"Well done! Good thinking process.", "Correct! Nice work.", "Right answer! Keep it up."}

	studySuggestions = map[string]string{
		"Calculus":         "Try practicing more derivative rules and integration techniques.",
		"Machine Learning": "Review the fundamental concepts and algorithms in ML.",
		"Data Structures":  "Practice implementing these structures from scratch.",
		"Algorithms":       "Focus on understanding the time and space complexity.",
	}
	defaultStudySuggestion = "Review the fundamentals and practice similar problems."

	learningTips = map[string][2]string{
		// correct, incorrect
		"Calculus": {
			"Try solving similar problems with different functions to reinforce the pattern.",
			"Break down complex problems into smaller steps and practice the basic rules.",
		},
		"Machine Learning": {
			"Connect this concept to real-world applications to deepen understanding.",
			"Try to understand the intuition behind the algorithm before memorizing steps.",
		},
	}
	defaultLearningTips = [2]string{
		"Great! Try teaching this concept to someone else to solidify your understanding.",
		"Don't worry - this is a common area of confusion. Practice makes perfect!",
	}
)

const (
	defaultEncouragement = "Great job engaging with the material!"
	defaultTip           = "Review this concept again to strengthen your understanding."
)

func studySuggestion(topic string) string {
	if s, ok := studySuggestions[topic]; ok {
		return s
	}
	return defaultStudySuggestion
}

func learningTip(topic string, correct bool) string {
	tips, ok := learningTips[topic]
	if !ok {
		tips = defaultLearningTips
	}
	if correct {
		return tips[0]
	}
	return tips[1]
}
