package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/at-ishikawa/refresher/internal/analytics"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/quiz"
)

// ProgressPrinter renders progress summaries for the terminal.
type ProgressPrinter struct {
	out   io.Writer
	bold  *color.Color
	green *color.Color
	red   *color.Color
	faint *color.Color
}

func NewProgressPrinter(out io.Writer) *ProgressPrinter {
	return &ProgressPrinter{
		out:   out,
		bold:  color.New(color.Bold),
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		faint: color.New(color.Faint),
	}
}

func (p *ProgressPrinter) Overview(overview analytics.Overview) {
	_, _ = p.bold.Fprintln(p.out, "Overview")
	fmt.Fprintf(p.out, "  Questions answered: %d (%d correct, %.1f%%)\n", overview.TotalQuestions, overview.CorrectAnswers, overview.Accuracy)
	fmt.Fprintf(p.out, "  Streak: %d days (best %d)\n", overview.StreakCurrent, overview.StreakBest)
	fmt.Fprintf(p.out, "  Days active: %d\n", overview.DaysActive)
	fmt.Fprintf(p.out, "  Sessions: %d, average %s\n", overview.TotalSessions, quiz.FormatDuration(overview.AverageSessionTime))
	if overview.FavoriteSubject != "" {
		fmt.Fprintf(p.out, "  Favorite subject: %s\n", overview.FavoriteSubject)
	}
	if overview.ImprovementRate != 0 {
		fmt.Fprintf(p.out, "  Improvement: %+.1f%%\n", overview.ImprovementRate)
	}
}

func (p *ProgressPrinter) Subjects(summaries []analytics.SubjectSummary) {
	_, _ = p.bold.Fprintln(p.out, "Subjects")
	for _, summary := range summaries {
		line := fmt.Sprintf("  %s %-28s %5.1f%% mastery, %d answered", summary.Icon, summary.Name, summary.Mastery, summary.QuestionsAnswered)
		if summary.LastAttempt > 0 {
			line += ", last " + progress.FromMillis(summary.LastAttempt).Format(time.DateOnly)
		}
		if summary.QuestionsAnswered == 0 {
			_, _ = p.faint.Fprintln(p.out, line)
			continue
		}
		fmt.Fprintln(p.out, line)
	}
}

func (p *ProgressPrinter) Analytics(result progress.Analytics) {
	if len(result.WeakTopics) > 0 {
		_, _ = p.bold.Fprintln(p.out, "Needs work")
		for _, topic := range result.WeakTopics {
			_, _ = p.red.Fprintf(p.out, "  %-28s %5.1f%% over %d attempts\n", topic.Topic, topic.Accuracy, topic.Attempts)
		}
	}
	if len(result.StrongTopics) > 0 {
		_, _ = p.bold.Fprintln(p.out, "Strong topics")
		for _, topic := range result.StrongTopics {
			_, _ = p.green.Fprintf(p.out, "  %-28s %5.1f%% over %d attempts\n", topic.Topic, topic.Accuracy, topic.Attempts)
		}
	}
	if len(result.Recommendations) > 0 {
		_, _ = p.bold.Fprintln(p.out, "Recommendations")
		for _, recommendation := range result.Recommendations {
			fmt.Fprintf(p.out, "  [%s] %s: %s\n", recommendation.Priority, recommendation.Title, recommendation.Description)
		}
	}
}

func (p *ProgressPrinter) Periods(result analytics.PeriodResult) {
	if len(result.Periods) == 0 {
		fmt.Fprintln(p.out, "No sessions recorded for this period.")
		return
	}
	_, _ = p.bold.Fprintf(p.out, "%-8s %8s %10s %8s %9s\n", "Period", "Sessions", "Questions", "Correct", "Accuracy")
	for _, period := range result.Periods {
		fmt.Fprintf(p.out, "%-8s %8d %10d %8d %8.1f%%\n",
			period.Period, period.Sessions, period.QuestionsAnswered, period.CorrectAnswers, period.AverageAccuracy)
	}
	aggregate := result.Aggregate
	_, _ = p.bold.Fprintf(p.out, "%-8s %8d %10d %8d %8.1f%%\n",
		"Total", aggregate.Sessions, aggregate.QuestionsAnswered, aggregate.CorrectAnswers, aggregate.AverageAccuracy)
}
