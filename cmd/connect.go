// File: cmd/connect.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/chaser/internal/browser"
	"github.com/xkilldash9x/chaser/internal/observability"
)

// newConnectCmd creates the `connect` command, which resolves the DevTools
// WebSocket endpoint of an already running browser.
func newConnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connect <url>",
		Short: "Resolves the DevTools WebSocket endpoint of a running browser",
		Long: `Probes a running browser's /json/version endpoint (or accepts a ws:// URL
directly) and prints the resolved DevTools WebSocket endpoint. Loopback hosts
in the browser's answer are rewritten to the address that actually responded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			session, msgs, err := browser.Connect(cmd.Context(), args[0], logger)
			if err != nil {
				return fmt.Errorf("failed to attach to browser: %w", err)
			}
			go func() {
				for range msgs {
				}
			}()

			cmd.Println(session.WebSocketAddress())
			// No protocol handler is attached, so skip the graceful close
			// round trip; Kill on an attached session only marks it closed.
			return session.Kill(cmd.Context())
		},
	}
}

func init() {
	rootCmd.AddCommand(newConnectCmd())
}
