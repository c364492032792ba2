package cmds

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coconutbird/uwpdumper/internal/appx"
	"github.com/coconutbird/uwpdumper/internal/ui"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgs, err := appx.List()
			if err != nil {
				return err
			}

			tbl := ui.NewTable(
				ui.Column{Header: "NAME", MaxWidth: 40},
				ui.Column{Header: "FAMILY", MaxWidth: 50},
				ui.Column{Header: "APP"},
			)
			for _, p := range pkgs {
				tbl.AddRow(p.Name, p.FamilyName, p.AppID)
			}
			return tbl.Render(os.Stdout)
		},
	}
}
