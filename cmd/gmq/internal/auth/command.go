package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/gmq/cmd/gmq/internal"
	"github.com/tinyland-inc/gmq/pkg/auth"
	"github.com/tinyland-inc/gmq/pkg/config"
	"github.com/tinyland-inc/gmq/pkg/groupme"
)

func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Short:   "Manage GroupMe credentials",
		Example: "gmq auth login",
	}

	cmd.AddCommand(newLoginCommand(), newStatusCommand())

	return cmd
}

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store a GroupMe access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return err
			}
			internal.SetupLogging(cfg, false)

			token, err := auth.PasteToken(os.Stdin, os.Stdout)
			if err != nil {
				return err
			}

			// Verify before persisting.
			client, err := groupme.New(cmd.Context(), token,
				groupme.WithBaseURL(cfg.API.BaseURL),
				groupme.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
			)
			if err != nil {
				return err
			}

			cfg.API.Token = token
			if err := config.SaveConfig(internal.GetConfigPath(), cfg); err != nil {
				return err
			}

			fmt.Printf("Logged in as %s\n", client.Name)
			return nil
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the authenticated user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := internal.LoadConfig()
			if err != nil {
				return err
			}
			internal.SetupLogging(cfg, false)

			client, err := internal.NewAPIClient(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Printf("Name:  %s\n", client.Name)
			fmt.Printf("Email: %s\n", client.Email)
			fmt.Printf("Phone: %s\n", client.PhoneNumber)
			return nil
		},
	}
}
