// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/rhythm/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to check in, run routines and tend the
garden through a standardized protocol. The server communicates via
stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "rhythm": {
        "command": "rhythm",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  get_profile          Tokens, streaks and settings
  complete_onboarding  Set the user's name
  update_profile       Change name or reminder times
  save_daily_log       Record part of today's check-in
  get_today_log        Read today's check-in
  new_routine          Get or draw the active routine
  complete_routine     Finish the routine for 0.2 tokens
  refresh_routine      Swap the routine (free hourly or paid)
  throw_object         Spend tokens on the garden
  list_garden          List garden items

AVAILABLE RESOURCES:

  rhythm://profile    Profile and economy
  rhythm://today      Today's check-in and routine
  rhythm://garden     All garden items
  rhythm://stats      Summary and the last seven days`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(st)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
