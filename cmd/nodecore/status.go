package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/nodecore/pkg/client"
)

// StatusFlags holds flags for the status command
type StatusFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

func createStatusCommand() *cobra.Command {
	flags := &StatusFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running nodecore server",
		Long: `Query the health endpoint of a running nodecore server and print the
node state it registered at boot.

Examples:
  nodecore status
  nodecore status --api-url=http://remote:8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(client.Config{BaseURL: flags.APIUrl, Timeout: flags.APITimeout})
			hs, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Printf("node    %s (id %d)\n", hs.Name, hs.NodeID)
			cmd.Printf("uuid    %s\n", hs.UUID)
			cmd.Printf("role    %s\n", hs.Role)
			cmd.Printf("version %s\n", hs.Version)
			cmd.Printf("status  %s, up %s, %d connections\n", hs.Status, hs.Uptime, hs.Connections)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", "http://localhost:8080", "base URL of the running server")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
	return cmd
}
