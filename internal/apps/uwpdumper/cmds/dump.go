package cmds

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/coconutbird/uwpdumper/internal/apps/uwpdumper/config"
	"github.com/coconutbird/uwpdumper/internal/controller"
	"github.com/coconutbird/uwpdumper/internal/inject"
	"github.com/coconutbird/uwpdumper/internal/logs"
	"github.com/coconutbird/uwpdumper/internal/ui"
)

var (
	dumpPID     uint32
	dumpName    string
	dumpPayload string
	dumpOutput  string
)

func attachDumpCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&dumpPID, "pid", 0, "target process id (skips the picker)")
	cmd.Flags().StringVar(&dumpName, "name", "", "target process name (skips the picker)")
	cmd.Flags().StringVar(&dumpPayload, "payload", "", "path to the payload module")
	cmd.Flags().StringVarP(&dumpOutput, "output", "o", "", "relocate the dump into this directory")
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [TARGET]",
		Short: "Dump a running packaged app",
		Long: `Inject the payload into a running packaged app and copy its package
files out. TARGET is a process name or pid; if omitted, a picker is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: dumpCmdRunE,
	}
	attachDumpCmdFlags(cmd)
	return cmd
}

func dumpCmdRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.ConfigFile())
	if err != nil {
		return err
	}

	pid, err := resolveTarget(args)
	if err != nil {
		return err
	}

	opts, err := sessionOptions(cfg, pid)
	if err != nil {
		return err
	}

	res, err := controller.RunSession(cmd.Context(), opts)
	if err != nil {
		return err
	}
	logs.Successf("Done: %d files in %s (%.1fs)", res.Files, res.DumpPath, res.Duration.Seconds())
	return nil
}

// sessionOptions merges config and flags into one session setup. Flags win.
func sessionOptions(cfg *config.Config, pid uint32) (controller.SessionOptions, error) {
	payload := dumpPayload
	if payload == "" {
		payload = cfg.PayloadDLL
	}
	if payload == "" {
		var err error
		payload, err = config.DefaultPayloadPath()
		if err != nil {
			return controller.SessionOptions{}, fmt.Errorf("locate payload module: %w", err)
		}
	}

	output := dumpOutput
	if output == "" {
		output = cfg.OutputDir
	}

	return controller.SessionOptions{
		PID:        pid,
		PayloadDLL: payload,
		OutputDir:  output,
		Workers:    cfg.Workers,
		Poll:       time.Duration(cfg.PollIntervalMS) * time.Millisecond,
		Log:        logs.L(),
	}, nil
}

// resolveTarget turns the flag, the positional argument or a picker choice
// into a pid.
func resolveTarget(args []string) (uint32, error) {
	if dumpPID != 0 {
		return dumpPID, nil
	}
	if dumpName != "" {
		return pidByName(dumpName)
	}
	if len(args) == 1 {
		// A numeric target is a pid, anything else a process name.
		if pid, err := strconv.ParseUint(args[0], 10, 32); err == nil {
			return uint32(pid), nil
		}
		return pidByName(args[0])
	}
	return pickProcess()
}

func pidByName(name string) (uint32, error) {
	matches, err := inject.FindByName(name)
	if err != nil {
		return 0, err
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("no running process named %q", name)
	case 1:
		return matches[0].PID, nil
	}
	return selectProcess(fmt.Sprintf("Multiple processes named %q, pick one:", name), matches)
}

func pickProcess() (uint32, error) {
	procs, err := inject.ListPackaged()
	if err != nil {
		return 0, err
	}
	if len(procs) == 0 {
		return 0, fmt.Errorf("no running packaged processes found")
	}
	return selectProcess("Pick the process to dump:", procs)
}

func selectProcess(label string, procs []inject.ProcessInfo) (uint32, error) {
	choice, err := logs.L().SelectOne(label, ui.ToSelectOptions(procs))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.ParseUint(choice.OptionID(), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse picked pid: %w", err)
	}
	return uint32(pid), nil
}
