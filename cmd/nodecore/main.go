package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
}

func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "nodecore",
		Short: "Self-registering node web server",
		Long: `nodecore registers this process as a node in a shared store on first
boot and serves the node's landing page, log viewer and health endpoint.

Examples:
  nodecore serve                    # Start with defaults
  nodecore serve config.toml        # Start with a specific config file
  nodecore version                  # Print the binary version`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "path to TOML config file")

	root.AddCommand(createServeCommand(globalFlags))
	root.AddCommand(createStatusCommand())
	root.AddCommand(createVersionCommand())
	return root
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the nodecore version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("nodecore %s\n", Version)
		},
	}
}
