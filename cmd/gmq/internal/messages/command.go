package messages

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/gmq/cmd/gmq/internal"
	"github.com/tinyland-inc/gmq/pkg/groupme"
	"github.com/tinyland-inc/gmq/pkg/progress"
)

func NewMessagesCommand() *cobra.Command {
	var dm bool
	var before, after, keyword string
	var limit int
	var jsonOut bool
	var quiet bool
	var debug bool

	cmd := &cobra.Command{
		Use:     "messages <chat>",
		Short:   "Search a chat's message history",
		Args:    cobra.ExactArgs(1),
		Example: `gmq messages "Team" --keyword deploy --after 01/01/2025 --limit 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return err
			}
			internal.SetupLogging(cfg, debug)

			criteria, err := groupme.ParseCriteria(before, after, keyword, limit)
			if err != nil {
				return err
			}

			client, err := internal.NewAPIClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			chat, err := client.GetChat(cmd.Context(), args[0], dm)
			if err != nil {
				return err
			}

			var sink groupme.ProgressFunc
			var renderer *progress.Renderer
			total := 0
			if !quiet {
				// With an after-bound the walk stops early, so a bounded
				// percentage would be misleading.
				renderer = progress.NewRenderer(os.Stderr,
					fmt.Sprintf("Fetching messages from %s", chat.Name), criteria.After != 0)
				sink = func(processed, t, selected int) {
					total = t
					renderer.Update(processed, t, selected)
				}
			}

			msgs, err := chat.Messages(cmd.Context(), criteria, sink)
			if err != nil {
				return err
			}
			if renderer != nil {
				renderer.Done(len(msgs), total)
			}

			if jsonOut {
				out, err := json.MarshalIndent(msgs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			for _, msg := range msgs {
				fmt.Printf("[%s] %s: %s\n", msg.Sent, msg.Author, msg.Text)
				for _, u := range msg.ImageURLs {
					fmt.Printf("    image: %s\n", u)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dm, "dm", false, "Treat <chat> as a direct message (skips the group search)")
	cmd.Flags().StringVar(&before, "before", "", "Only messages sent before (MM/DD/YYYY or MM/DD/YYYY HH:MM:SS)")
	cmd.Flags().StringVar(&after, "after", "", "Only messages sent after (MM/DD/YYYY or MM/DD/YYYY HH:MM:SS)")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Only messages containing this text (case-sensitive)")
	cmd.Flags().IntVar(&limit, "limit", groupme.Unbounded, "Maximum number of messages to return (-1 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the progress indicator")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
