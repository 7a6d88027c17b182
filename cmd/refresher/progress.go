package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/refresher/internal/analytics"
	"github.com/at-ishikawa/refresher/internal/cli"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/report"
)

func newProgressCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "progress",
		Short: "Show learning progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			snapshot := components.Store.Snapshot()
			printer := cli.NewProgressPrinter(cmd.OutOrStdout())
			printer.Overview(components.Analytics.Overview(snapshot))
			printer.Subjects(analytics.SubjectProgress(components.Catalog, snapshot))
			printer.Analytics(components.Store.Analytics())
			return nil
		},
	}

	command.AddCommand(
		newProgressExportCommand(),
		newProgressImportCommand(),
		newProgressResetCommand(),
		newProgressReportCommand(),
		newProgressStatsCommand(),
	)
	return command
}

func newProgressExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export progress as JSON to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			data, err := components.Store.Export()
			if err != nil {
				return fmt.Errorf("store.Export() > %w", err)
			}
			if len(args) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			path := args[0]
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
				}
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress exported to %s\n", path)
			return nil
		},
	}
}

func newProgressImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all progress with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("os.ReadFile(%s) > %w", args[0], err)
			}

			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			if !components.Store.Import(ctx, data) {
				return errors.New("the file is not a valid progress export, nothing was imported")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Progress imported from %s\n", args[0])
			return nil
		},
	}
}

func newProgressResetCommand() *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "reset",
		Short: "Delete all progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			var confirmer progress.Confirmer = cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirmer = progress.ConfirmFunc(func(string) bool { return true })
			}
			if !components.Store.Reset(ctx, confirmer) {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All progress has been reset.")
			return nil
		},
	}
	command.Flags().BoolVarP(&yes, "yes", "y", false, "reset without asking for confirmation")
	return command
}

func newProgressReportCommand() *cobra.Command {
	var withPDF bool

	command := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown progress report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			cfg := components.Config
			tmpl, err := report.ParseTemplate(cfg.Templates.ReportTemplate, slog.Default())
			if err != nil {
				return fmt.Errorf("report.ParseTemplate() > %w", err)
			}
			data := report.NewData(components.Analytics, components.Catalog, components.Store.Snapshot(), time.Now())
			markdownPath, err := report.NewWriter(tmpl, cfg.Outputs.ReportDirectory).WriteMarkdown(data)
			if err != nil {
				return fmt.Errorf("writer.WriteMarkdown() > %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", markdownPath)

			if withPDF {
				pdfPath, err := report.ConvertMarkdownToPDF(markdownPath)
				if err != nil {
					return fmt.Errorf("report.ConvertMarkdownToPDF() > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "PDF written to %s\n", pdfPath)
			}
			return nil
		},
	}
	command.Flags().BoolVar(&withPDF, "pdf", false, "also convert the report to PDF")
	return command
}

func newProgressStatsCommand() *cobra.Command {
	var year, month int

	command := &cobra.Command{
		Use:   "stats",
		Short: "Show monthly session statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month < 0 || month > 12 {
				return fmt.Errorf("invalid month: %d", month)
			}
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			result := analytics.CalculatePeriodStatistics(components.Store.Snapshot().Sessions, year, month)
			cli.NewProgressPrinter(cmd.OutOrStdout()).Periods(result)
			return nil
		},
	}
	flags := command.Flags()
	flags.IntVar(&year, "year", 0, "only include this year")
	flags.IntVar(&month, "month", 0, "only include this month (1-12)")
	return command
}
