package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/refresher/internal/bootstrap"
	"github.com/at-ishikawa/refresher/internal/config"
)

func newSubjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List the subjects in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			subjects, err := bootstrap.OpenCatalog(cfg.Catalog)
			if err != nil {
				return fmt.Errorf("bootstrap.OpenCatalog() > %w", err)
			}

			out := cmd.OutOrStdout()
			for _, subject := range subjects.Subjects() {
				fmt.Fprintf(out, "%-26s %s (%d questions)\n", subject.Key, subject.Name, len(subject.Questions))
				if len(subject.Topics) > 0 {
					fmt.Fprintf(out, "%-26s %s\n", "", strings.Join(subject.Topics, ", "))
				}
			}
			return nil
		},
	}
}
