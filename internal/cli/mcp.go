package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	todomcp "github.com/valter-silva-au/todo/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the todo MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the todo MCP server on stdio",
	Long: `Start the todo MCP server on stdio transport.

The server exposes the to-do list as MCP tools that AI assistants can call:
list_tasks, add_task, toggle_task, rename_task, delete_task, clear_completed,
get_stats, get_alerts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return errStoreNotInitialized
		}

		srv := todomcp.NewServer(Store, MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
