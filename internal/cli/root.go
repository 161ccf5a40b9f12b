package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// Options carries the global flags to the Initialize hook.
type Options struct {
	DataDir  string
	Backend  string
	LogLevel string
}

// Initialize wires the package-level services before a command runs. It is
// set by main; commands that need no services (version, help) skip it.
var Initialize func(opts Options) (io.Closer, error)

var (
	globalOpts Options
	closer     io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "A small local to-do list",
	Long: `todo keeps a single list of short tasks on this machine.

Add, complete, rename and delete tasks from the command line, or run
"todo ui" for an interactive screen. Every change is written to local
storage immediately.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsServices(cmd) || Initialize == nil || closer != nil {
			return nil
		}
		c, err := Initialize(globalOpts)
		if err != nil {
			return fmt.Errorf("initializing todo: %w", err)
		}
		closer = c
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Annotations: map[string]string{
		annotationNoServices: "true",
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "todo %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

// annotationNoServices marks commands that run without Initialize.
const annotationNoServices = "todo/no-services"

func needsServices(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationNoServices] != "true"
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&globalOpts.DataDir, "data-dir", "", "Directory holding task data (default $TODO_HOME or ~/.todo)")
	pf.StringVar(&globalOpts.Backend, "backend", "", "Storage backend: file, sqlite or memory (overrides .todoconfig)")
	pf.StringVar(&globalOpts.LogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides .todoconfig)")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and releases services afterwards.
func Execute() error {
	err := rootCmd.Execute()
	if closer != nil {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
		closer = nil
	}
	return err
}
