package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// SetVersion sets the version string reported by the version command.
// Called from main with the value injected at build time.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "gdrive-mcp",
	Short: "MCP server exposing Google Drive tools",
	Long: `gdrive-mcp is an MCP server that gives AI assistants read access to
Google Drive: listing files, searching them, and summarizing PDFs with Gemini.

Run 'gdrive-mcp auth' once to complete the OAuth consent flow, then
'gdrive-mcp serve' to start the server.`,
	SilenceUsage: true,
}

// Execute runs the root command. When invoked without a subcommand it
// defaults to serve, so the bare binary works as an MCP server entry in
// assistant configuration.
func Execute() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
