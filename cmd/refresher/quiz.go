package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/cli"
	"github.com/at-ishikawa/refresher/internal/selector"
)

// Difficulty is the --difficulty flag value.
type Difficulty string

func (d *Difficulty) Set(val string) error {
	for _, difficulty := range allDifficulties {
		if val == string(difficulty) {
			*d = difficulty
			return nil
		}
	}
	return fmt.Errorf("invalid difficulty: %s", val)
}

func (d Difficulty) String() string {
	return string(d)
}

func (d *Difficulty) Type() string {
	return "difficulty"
}

var (
	_               pflag.Value = (*Difficulty)(nil)
	allDifficulties             = []Difficulty{
		selector.DifficultyMixed,
		Difficulty(catalog.DifficultyBeginner),
		Difficulty(catalog.DifficultyIntermediate),
		Difficulty(catalog.DifficultyAdvanced),
	}
)

func newQuizCommand() *cobra.Command {
	var (
		count      int
		difficulty Difficulty
		noAdaptive bool
		timeLimit  int
	)

	command := &cobra.Command{
		Use:   "quiz <subject>",
		Short: "Take a quiz on one subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			quizConfig := components.QuizConfig()
			flags := cmd.Flags()
			if flags.Changed("count") {
				quizConfig.QuestionCount = count
			}
			if flags.Changed("difficulty") {
				quizConfig.Difficulty = string(difficulty)
			}
			if noAdaptive {
				quizConfig.AdaptiveLearning = false
			}
			if flags.Changed("time-limit") {
				quizConfig.TimeLimit = nil
				if timeLimit > 0 {
					quizConfig.TimeLimit = &timeLimit
				}
			}

			base := cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout())
			quizCLI := cli.NewQuizCLI(base, components.NewSession(nil), components.Assistant)
			if err := quizCLI.Start(ctx, args[0], quizConfig); err != nil {
				if errors.Is(err, catalog.ErrUnknownSubject) {
					return fmt.Errorf("%w. Run \"refresher subjects\" to list the subjects", err)
				}
				return err
			}
			return quizCLI.Run(ctx, quizCLI)
		},
	}

	flags := command.Flags()
	flags.IntVar(&count, "count", selector.DefaultQuestionCount, "number of questions")
	flags.Var(&difficulty, "difficulty", fmt.Sprintf("question difficulty. Possible values are %v", allDifficulties))
	flags.BoolVar(&noAdaptive, "no-adaptive", false, "do not adapt the question mix to weak and strong topics")
	flags.IntVar(&timeLimit, "time-limit", 0, "time limit in seconds, 0 for none")
	return command
}
