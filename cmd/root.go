package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calmcp application
var rootCmd = &cobra.Command{
	Use:   "calmcp",
	Short: "MCP server for Google Calendar",
	Long: `calmcp is a Model Context Protocol (MCP) server that lets AI assistants
read and create Google Calendar events.

Reads use a public API key; writes use per-user OAuth credentials stored
in a relational database and refreshed automatically.

It can run as:
  - A stdio MCP server for local assistants (default)
  - An SSE MCP server for assistants connecting over HTTP`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calmcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("calmcp version %s\n", version)
		},
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newVersionCmd())
}
