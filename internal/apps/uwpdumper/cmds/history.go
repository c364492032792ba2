package cmds

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coconutbird/uwpdumper/internal/apps/uwpdumper/config"
	"github.com/coconutbird/uwpdumper/internal/history"
	"github.com/coconutbird/uwpdumper/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past dump sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.ConfigFile())
			if err != nil {
				return err
			}
			if limit == 0 {
				limit = cfg.HistoryLimit
			}

			store, err := history.DefaultStore(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			tbl := ui.NewTable(
				ui.Column{Header: "WHEN"},
				ui.Column{Header: "PACKAGE", MaxWidth: 45},
				ui.Column{Header: "FILES"},
				ui.Column{Header: "ERRORS"},
				ui.Column{Header: "DUMP PATH", MaxWidth: 60},
			)
			for _, e := range entries {
				tbl.AddRow(
					e.CreatedAt.Local().Format("2006-01-02 15:04"),
					e.PackageName,
					fmt.Sprintf("%d", e.Copied),
					fmt.Sprintf("%d", e.Failed),
					e.DumpPath,
				)
			}
			return tbl.Render(os.Stdout)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most this many sessions")
	return cmd
}
