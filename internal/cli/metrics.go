package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	statsJSON  bool
	statsSince string
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"metrics"},
	Short:   "Show activity derived from the event journal",
	Long: `Display counts of tasks added, completed, renamed and deleted, derived
from the event journal kept next to the task data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized (events may be disabled in .todoconfig)")
		}

		sinceTime, err := parseSinceDuration(statsSince)
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			data, err := json.MarshalIndent(metrics, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "Activity (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(out, "  %-20s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks added:", metrics.TasksAdded)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks completed:", metrics.TasksCompleted)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks reopened:", metrics.TasksReopened)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks renamed:", metrics.TasksRenamed)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks deleted:", metrics.TasksDeleted)
		fmt.Fprintf(out, "  %-20s %d\n", "Tasks cleared:", metrics.TasksCleared)
		if metrics.PersistErrors > 0 {
			fmt.Fprintf(out, "  %-20s %d\n", "Save failures:", metrics.PersistErrors)
		}

		if len(metrics.FilterChanges) > 0 {
			fmt.Fprintln(out, "\n  Filter changes:")
			names := make([]string, 0, len(metrics.FilterChanges))
			for name := range metrics.FilterChanges {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "    %-18s %d\n", name+":", metrics.FilterChanges[name])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(out, "\n  %-20s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(out, "  %-20s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time in the past.
func parseSinceDuration(s string) (time.Time, error) {
	now := time.Now().UTC()
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output metrics as JSON")
	statsCmd.Flags().StringVar(&statsSince, "since", "7d", "Time window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(statsCmd)
}
