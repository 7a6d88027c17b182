package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/refresher/internal/cli"
)

func newChatCommand() *cobra.Command {
	var message string

	command := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the learning assistant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, app, err := openComponents(ctx)
			if err != nil {
				return err
			}
			defer closeApp(ctx, app)

			if err := components.LoadModel(ctx); err != nil {
				slog.Default().Warn("the model is not available, using offline responses", slog.Any("error", err))
			}

			chatCLI := cli.NewChatCLI(cli.NewInteractiveCLI(cmd.InOrStdin(), cmd.OutOrStdout()), components.Assistant)
			if message != "" {
				chatCLI.Say(ctx, message)
				return nil
			}
			chatCLI.Greet()
			if err := chatCLI.Run(ctx, chatCLI); err != nil {
				return fmt.Errorf("chatCLI.Run() > %w", err)
			}
			return nil
		},
	}
	command.Flags().StringVarP(&message, "message", "m", "", "send one message and print the reply")
	return command
}
