// gmq - query GroupMe chat history from the command line

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/gmq/cmd/gmq/internal/auth"
	"github.com/tinyland-inc/gmq/cmd/gmq/internal/chats"
	"github.com/tinyland-inc/gmq/cmd/gmq/internal/emoji"
	"github.com/tinyland-inc/gmq/cmd/gmq/internal/messages"
	"github.com/tinyland-inc/gmq/cmd/gmq/internal/version"
)

func NewGmqCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "gmq",
		Short:   "Query GroupMe chat history",
		Example: "gmq messages \"Team\" --keyword deploy --limit 25",
	}

	cmd.AddCommand(
		auth.NewAuthCommand(),
		chats.NewChatsCommand(),
		messages.NewMessagesCommand(),
		emoji.NewEmojiCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewGmqCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
