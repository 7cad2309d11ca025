package chats

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/gmq/cmd/gmq/internal"
	"github.com/tinyland-inc/gmq/pkg/groupme"
)

func NewChatsCommand() *cobra.Command {
	var lastUsed string
	var jsonOut bool
	var debug bool

	cmd := &cobra.Command{
		Use:     "chats",
		Short:   "List your chats, most recently active first",
		Args:    cobra.NoArgs,
		Example: "gmq chats --last-used 2w",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return err
			}
			internal.SetupLogging(cfg, debug)

			client, err := internal.NewAPIClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			progress := func(kind groupme.ChatKind, fetched int) {
				fmt.Fprintf(os.Stderr, "\rFetching %ss (%d retrieved)...", kind, fetched)
			}
			list, err := client.ListChats(cmd.Context(), lastUsed, progress)
			fmt.Fprint(os.Stderr, "\r")
			if err != nil {
				return err
			}

			if jsonOut {
				out, err := json.MarshalIndent(list, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			for _, chat := range list {
				fmt.Printf("%-14s  %-30s  last used %s\n", "["+chat.Kind.String()+"]", chat.Name, chat.LastUsed)
			}
			fmt.Fprintf(os.Stderr, "%d chats\n", len(list))
			return nil
		},
	}

	cmd.Flags().StringVar(&lastUsed, "last-used", "", "Only chats active since (e.g. 30min, 6h, 2w, or MM/DD/YYYY)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")

	return cmd
}
