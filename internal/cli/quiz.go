package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/at-ishikawa/refresher/internal/assistant"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/quiz"
	"github.com/at-ishikawa/refresher/internal/selector"
)

// QuizCLI runs one quiz on the terminal, one question per session step.
type QuizCLI struct {
	*InteractiveCLI
	session   *quiz.Session
	assistant *assistant.Assistant
	now       func() time.Time
}

func NewQuizCLI(base *InteractiveCLI, session *quiz.Session, assistant *assistant.Assistant) *QuizCLI {
	return &QuizCLI{
		InteractiveCLI: base,
		session:        session,
		assistant:      assistant,
		now:            time.Now,
	}
}

// Start begins the quiz and prints its header.
func (r *QuizCLI) Start(ctx context.Context, subjectKey string, config selector.Config) error {
	if err := r.session.Start(ctx, subjectKey, config); err != nil {
		return fmt.Errorf("session.Start() > %w", err)
	}
	subject := r.session.Subject()
	_, _ = r.bold.Fprintf(r.stdoutWriter, "%s %s quiz\n", subject.Icon, subject.Name)
	fmt.Fprintf(r.stdoutWriter, "Answer with A-D. Type q to quit.\n\n")
	return nil
}

func (r *QuizCLI) Session(ctx context.Context) error {
	position, err := r.session.Current()
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidState) {
			return errEnd
		}
		return fmt.Errorf("session.Current() > %w", err)
	}

	q := position.Question
	header := fmt.Sprintf("Question %d/%d", position.Index+1, position.Total)
	_, _ = r.bold.Fprint(r.stdoutWriter, header)
	_, _ = r.faint.Fprintf(r.stdoutWriter, " [%s, %s]", q.Topic, q.Difficulty)
	if deadline, ok := r.session.Deadline(); ok {
		if remaining := deadline.Sub(r.now()); remaining > 0 {
			_, _ = r.faint.Fprintf(r.stdoutWriter, " %s left", quiz.FormatDuration(float64(remaining.Milliseconds())))
		} else {
			_, _ = r.red.Fprint(r.stdoutWriter, " time limit reached")
		}
	}
	fmt.Fprintf(r.stdoutWriter, "\n%s\n", q.Question)
	for i, option := range q.Options {
		fmt.Fprintf(r.stdoutWriter, "  %s) %s\n", optionLetter(i), option)
	}
	fmt.Fprint(r.stdoutWriter, "> ")

	input, err := r.readLine()
	if err != nil {
		return err
	}
	if strings.EqualFold(input, "q") || strings.EqualFold(input, "quit") {
		if r.session.Exit(r) {
			fmt.Fprintln(r.stdoutWriter, "Quiz abandoned.")
			return errEnd
		}
		fmt.Fprintln(r.stdoutWriter)
		return nil
	}
	option, ok := parseOption(input, len(q.Options))
	if !ok {
		_, _ = r.red.Fprintf(r.stdoutWriter, "Please answer with a letter between A and %s.\n\n", optionLetter(len(q.Options)-1))
		return nil
	}

	outcome, err := r.session.SubmitAnswer(ctx, option)
	if err != nil {
		return fmt.Errorf("session.SubmitAnswer() > %w", err)
	}
	r.printOutcome(ctx, q.Options, option, outcome, position)

	statistics, err := r.session.Advance(ctx)
	if err != nil {
		return fmt.Errorf("session.Advance() > %w", err)
	}
	if statistics != nil {
		r.printStatistics(statistics)
		return errEnd
	}
	return nil
}

func (r *QuizCLI) printOutcome(ctx context.Context, options []string, selected int, outcome quiz.AnswerOutcome, position quiz.Position) {
	if outcome.IsCorrect {
		fmt.Fprint(r.stdoutWriter, "✅ ")
		_, _ = r.green.Fprintln(r.stdoutWriter, "Correct!")
	} else {
		fmt.Fprint(r.stdoutWriter, "❌ ")
		_, _ = r.red.Fprintf(r.stdoutWriter, "Wrong. The answer is %s) %s\n",
			optionLetter(outcome.CorrectOption), options[outcome.CorrectOption])
	}
	if outcome.Explanation != "" {
		_, _ = r.italic.Fprintln(r.stdoutWriter, outcome.Explanation)
	}
	if r.assistant != nil {
		feedback := r.assistant.Feedback(ctx, position.Question, selected, outcome.IsCorrect, outcome.TimeSpent)
		printFeedback(r.InteractiveCLI, feedback)
	}
	fmt.Fprintln(r.stdoutWriter)
}

// printFeedback skips the feedback message, which repeats the explanation already shown.
func printFeedback(cli *InteractiveCLI, feedback assistant.Feedback) {
	if feedback.Encouragement != "" {
		fmt.Fprintln(cli.stdoutWriter, feedback.Encouragement)
	}
	if feedback.Suggestion != "" {
		fmt.Fprintf(cli.stdoutWriter, "Suggestion: %s\n", feedback.Suggestion)
	}
	if feedback.LearningTip != "" {
		_, _ = cli.faint.Fprintf(cli.stdoutWriter, "Tip: %s\n", feedback.LearningTip)
	}
}

func (r *QuizCLI) printStatistics(statistics *quiz.Statistics) {
	_, _ = r.bold.Fprintln(r.stdoutWriter, "Quiz complete!")
	fmt.Fprintf(r.stdoutWriter, "Score: %d/%d (%.0f%%)\n", statistics.Score, statistics.TotalQuestions, statistics.Accuracy)
	fmt.Fprintf(r.stdoutWriter, "Time: %s total, %s per question\n",
		quiz.FormatDuration(float64(statistics.TotalTime)), quiz.FormatDuration(statistics.AverageTime))

	topics := make([]string, 0, len(statistics.TopicScores))
	for topic := range statistics.TopicScores {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	for _, topic := range topics {
		printTally(r.InteractiveCLI, topic, statistics.TopicScores[topic])
	}
}

func printTally(cli *InteractiveCLI, name string, tally progress.ScoreTally) {
	c := cli.green
	if tally.Total > 0 && tally.Correct*2 < tally.Total {
		c = cli.red
	}
	_, _ = c.Fprintf(cli.stdoutWriter, "  %-24s %d/%d\n", name, tally.Correct, tally.Total)
}
