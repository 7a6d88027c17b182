package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/config"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [directory]",
		Short: "Validate the subject files of a catalog directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var dir string
			if len(args) > 0 {
				dir = args[0]
			} else {
				cfg, err := config.Load(configFile)
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				dir = cfg.Catalog.Directory
			}

			var (
				subjects *catalog.Catalog
				err      error
			)
			if dir == "" {
				subjects, err = catalog.LoadDefault()
			} else {
				subjects, err = catalog.LoadDirectory(dir)
			}
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			displayValidationResults(cmd, subjects)
			return nil
		},
	}
}

func displayValidationResults(cmd *cobra.Command, subjects *catalog.Catalog) {
	out := cmd.OutOrStdout()
	total := 0
	for _, subject := range subjects.Subjects() {
		counts := make(map[catalog.Difficulty]int)
		for _, q := range subject.Questions {
			counts[q.Difficulty]++
		}
		fmt.Fprintf(out, "%s: %d questions (beginner %d, intermediate %d, advanced %d)\n",
			subject.Key, len(subject.Questions),
			counts[catalog.DifficultyBeginner], counts[catalog.DifficultyIntermediate], counts[catalog.DifficultyAdvanced])
		total += len(subject.Questions)
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "All validations passed! %d subjects, %d questions.\n", len(subjects.Keys()), total)
}
