package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/refresher/internal/bootstrap"
	"github.com/at-ishikawa/refresher/internal/config"
)

var (
	configFile string
	debugMode  bool
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "refresher",
		Short:         "Refresh computer science concepts with adaptive quizzes",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("godotenv.Load() > %w", err)
			}
			setupLogger(debugMode)
			return nil
		},
	}
	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default is ./config.yml or $HOME/.config/refresher/config.yml)")
	flags.BoolVar(&debugMode, "debug", false, "enable debug logging")

	rootCommand.AddCommand(
		newSubjectsCommand(),
		newQuizCommand(),
		newProgressCommand(),
		newChatCommand(),
		newValidateCommand(),
	)
	return rootCommand
}

func setupLogger(debugMode bool) {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// openComponents loads the configuration and builds the components. The caller must close the returned app.
func openComponents(ctx context.Context) (*bootstrap.Components, *bootstrap.App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	app := bootstrap.New()
	components, err := bootstrap.Build(ctx, app, cfg, slog.Default())
	if err != nil {
		_ = app.Close(ctx)
		return nil, nil, fmt.Errorf("bootstrap.Build() > %w", err)
	}
	return components, app, nil
}

func closeApp(ctx context.Context, app *bootstrap.App) {
	if err := app.Close(ctx); err != nil {
		slog.Default().Warn("failed to close resources", slog.Any("error", err))
	}
}
