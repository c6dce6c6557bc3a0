package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/driveglass/gdrive-mcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		credentialsFile string
		tokenFile       string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Run the Google OAuth consent flow and store the token",
		Long: `Run the interactive OAuth consent flow against Google and persist the
resulting token. A browser window opens for consent; the token lands in the
token file, where 'gdrive-mcp serve' picks it up without further interaction.

If the token file already holds a usable credential it is refreshed in place
and no browser interaction is needed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v := os.Getenv("GDRIVE_CREDENTIALS_FILE"); v != "" && !cmd.Flags().Changed("credentials-file") {
				credentialsFile = v
			}
			if v := os.Getenv("GDRIVE_TOKEN_FILE"); v != "" && !cmd.Flags().Changed("token-file") {
				tokenFile = v
			}
			return runAuth(cmd, credentialsFile, tokenFile)
		},
	}

	cmd.Flags().StringVar(&credentialsFile, "credentials-file", google.DefaultCredentialsFile, "Path to the OAuth client secret file. Can also use GDRIVE_CREDENTIALS_FILE env var.")
	cmd.Flags().StringVar(&tokenFile, "token-file", google.DefaultTokenFile, "Path to write the OAuth token to. Can also use GDRIVE_TOKEN_FILE env var.")

	return cmd
}

func runAuth(cmd *cobra.Command, credentialsFile, tokenFile string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	credentials := google.NewManager(credentialsFile, tokenFile, logger)

	// TokenSource acquires, refreshes or interactively obtains a credential
	// and persists it.
	if _, err := credentials.TokenSource(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful. Token saved to %s\n", credentials.TokenFile)
	return nil
}
