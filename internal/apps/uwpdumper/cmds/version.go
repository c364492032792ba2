package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coconutbird/uwpdumper/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of uwpdumper",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s\n", version.Get())
		},
	}
}
