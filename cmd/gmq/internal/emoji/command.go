package emoji

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/gmq/cmd/gmq/internal"
	"github.com/tinyland-inc/gmq/pkg/emoji"
)

func NewEmojiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "emoji",
		Short:   "Work with powerup emoji assets",
		Example: "gmq emoji download --pack 1 --index 15",
	}

	cmd.AddCommand(newDownloadCommand())

	return cmd
}

func newDownloadCommand() *cobra.Command {
	var packID, index, resolution int
	var dir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download one emoji's image bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return err
			}
			internal.SetupLogging(cfg, false)

			if resolution == 0 {
				resolution = cfg.Emoji.Resolution
			}
			if dir == "" {
				dir = cfg.EmojiDir()
			}

			client := emoji.NewClient(emoji.WithCatalogURL(cfg.Emoji.CatalogURL))
			asset, err := client.Resolve(cmd.Context(), emoji.CharmapRef{PackID: packID, Index: index}, resolution)
			if err != nil {
				return err
			}
			if asset == nil {
				return fmt.Errorf("no emoji found for pack %d index %d", packID, index)
			}

			files, err := client.Download(cmd.Context(), asset, dir)
			if err != nil {
				return err
			}

			fmt.Printf("Downloaded %q (%d files) to %s\n", asset.Transliteration, len(files), dir)
			return nil
		},
	}

	cmd.Flags().IntVar(&packID, "pack", 0, "Emoji pack id")
	cmd.Flags().IntVar(&index, "index", 0, "Emoji index within the pack")
	cmd.Flags().IntVar(&resolution, "resolution", 0, "Resolution tier 1-5 (default from config)")
	cmd.Flags().StringVar(&dir, "dir", "", "Destination directory (default from config)")
	_ = cmd.MarkFlagRequired("pack")

	return cmd
}
