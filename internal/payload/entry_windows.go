//go:build windows

package payload

import (
	"path/filepath"

	"golang.org/x/sys/windows"

	"github.com/coconutbird/uwpdumper/internal/appx"
	"github.com/coconutbird/uwpdumper/internal/dumper"
	"github.com/coconutbird/uwpdumper/internal/ipc"
)

// Run is the worker entry point, started from the module's load hook. It
// attaches to the channel keyed by this process's pid, runs the session and
// finally unloads the module from the host process. Failures before the
// channel is attached have nowhere to report to, so they exit quietly.
func Run() {
	defer SelfUnload()

	client, err := ipc.OpenClient(windows.GetCurrentProcessId())
	if err != nil {
		return
	}

	s := &Session{
		Client:  client,
		Resolve: resolveCurrent,
	}
	s.Run()
}

// resolveCurrent derives the dump parameters from the host process's own
// package identity. The dump lands in TempState, the one location the
// sandbox lets the package write to.
func resolveCurrent() (dumper.PackageInfo, string, error) {
	id, err := appx.CurrentIdentity()
	if err != nil {
		return dumper.PackageInfo{}, "", err
	}
	tempState, err := appx.TempStatePath(id.FamilyName)
	if err != nil {
		return dumper.PackageInfo{}, "", err
	}
	return dumper.PackageInfo{
		FamilyName: id.FamilyName,
		FullName:   id.FullName,
		Path:       id.Path,
	}, filepath.Join(tempState, "DUMP"), nil
}
