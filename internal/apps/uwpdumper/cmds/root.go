// Package cmds defines the uwpdumper command tree.
package cmds

import (
	"github.com/spf13/cobra"

	"github.com/coconutbird/uwpdumper/internal/logs"
	"github.com/coconutbird/uwpdumper/internal/runtime"
)

var quiet bool

func Execute(rt *runtime.Runtime) error {
	rootCmd := &cobra.Command{
		Use:   "uwpdumper [TARGET]",
		Short: "Dump the files of a running packaged app",
		Long: `uwpdumper extracts the installed files of a sandboxed packaged app by
injecting a payload module into the running process and copying the package
tree out through the app's own sandbox.

By default, 'uwpdumper' is equivalent to 'uwpdumper dump [TARGET]'.
TARGET is a process name or pid; if omitted, a picker is shown.`,
		Args: cobra.MaximumNArgs(1),
		// Default behavior is the same as 'dump'
		RunE: dumpCmdRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logs.SetQuiet(quiet)
			return nil
		},
		// we will handle that
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only print warnings, errors and the summary")

	// Root should accept the same flags as `dump`
	attachDumpCmdFlags(rootCmd)

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newLaunchCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd.ExecuteContext(rt.Ctx())
}
