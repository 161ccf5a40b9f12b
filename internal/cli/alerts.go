package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active alerts and warnings",
	Long: `Evaluate alert conditions against the event journal and display any triggered alerts.

Alerts check for failed saves, tasks left untouched for a long time, and too
many active tasks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized (event journal may be disabled)")
		}

		alerts, err := AlertEngine.Evaluate()
		if err != nil {
			return fmt.Errorf("evaluating alerts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(alerts) == 0 {
			fmt.Fprintln(out, "No active alerts.")
			return nil
		}

		fmt.Fprintf(out, "%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Fprintf(out, "  [%s] %s\n", severity, alert.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}
