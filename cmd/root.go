package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the taskbridge application
var rootCmd = &cobra.Command{
	Use:   "taskbridge",
	Short: "MCP server that bridges AI assistants to a remote task store",
	Long: `taskbridge is a Model Context Protocol (MCP) server that lets AI
assistants manage tasks in a remote task store through its REST API.

It exposes four tools: add_task, list_tasks, update_task and delete_task.
The server holds no task data itself; every call is forwarded to the
configured store.`,
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
	rootCmd.SetVersionTemplate(`{{printf "taskbridge version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
}
