package cmds

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coconutbird/uwpdumper/internal/apps/uwpdumper/config"
	"github.com/coconutbird/uwpdumper/internal/appx"
	"github.com/coconutbird/uwpdumper/internal/controller"
	"github.com/coconutbird/uwpdumper/internal/logs"
	"github.com/coconutbird/uwpdumper/internal/ui"
)

func newLaunchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch [FAMILY-NAME]",
		Short: "Launch a packaged app suspended and dump it",
		Long: `Start the app, keep it suspended while the payload attaches, then dump
it before its own code has run. Useful for apps that unpack or rewrite their
files at startup. FAMILY-NAME selects the package; if omitted, a picker is
shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: launchCmdRunE,
	}
	attachDumpCmdFlags(cmd)
	return cmd
}

func launchCmdRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ConfigFile())
	if err != nil {
		return err
	}

	pkg, err := resolvePackage(args)
	if err != nil {
		return err
	}
	if pkg.AppID == "" {
		return fmt.Errorf("package %s has no launchable application", pkg.FamilyName)
	}

	opts, err := sessionOptions(cfg, 0)
	if err != nil {
		return err
	}

	res, err := controller.LaunchAndDump(cmd.Context(), pkg.AppUserModelID(), opts)
	if err != nil {
		return err
	}
	logs.Successf("Done: %d files in %s (%.1fs)", res.Files, res.DumpPath, res.Duration.Seconds())
	return nil
}

func resolvePackage(args []string) (appx.Package, error) {
	pkgs, err := appx.List()
	if err != nil {
		return appx.Package{}, err
	}
	if len(pkgs) == 0 {
		return appx.Package{}, fmt.Errorf("no packages installed")
	}

	if len(args) == 1 {
		matches := appx.Find(pkgs, args[0])
		switch len(matches) {
		case 0:
			return appx.Package{}, fmt.Errorf("no installed package matches %q", args[0])
		case 1:
			return matches[0], nil
		}
		return pickFrom(fmt.Sprintf("Multiple packages match %q, pick one:", args[0]), matches)
	}

	return pickFrom("Pick the package to launch and dump:", pkgs)
}

func pickFrom(label string, pkgs []appx.Package) (appx.Package, error) {
	choice, err := logs.L().SelectOne(label, ui.ToSelectOptions(pkgs))
	if err != nil {
		return appx.Package{}, err
	}
	for _, p := range pkgs {
		if p.FamilyName == choice.OptionID() {
			return p, nil
		}
	}
	return appx.Package{}, fmt.Errorf("picked package disappeared")
}
