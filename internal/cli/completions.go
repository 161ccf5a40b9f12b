package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeTaskRefs lists task id prefixes with their titles. Only the first
// argument is a task reference.
func completeTaskRefs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Store == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var refs []string
	for _, task := range Store.Tasks() {
		ref := shortID(task.ID)
		if toComplete == "" || strings.HasPrefix(ref, strings.ToLower(toComplete)) {
			// Include the title as description for better UX.
			refs = append(refs, ref+"\t"+task.Title)
		}
	}
	return refs, cobra.ShellCompDirectiveNoFileComp
}

// completeFilters completes values for the --filter flag.
func completeFilters(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"all\tEvery task",
		"active\tTasks not yet completed",
		"completed\tTasks marked completed",
	}, cobra.ShellCompDirectiveNoFileComp
}

// registerFilterCompletion registers completion for the --filter flag on cmd.
func registerFilterCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("filter", completeFilters)
}
