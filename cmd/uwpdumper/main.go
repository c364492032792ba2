package main

import (
	uwpdumper "github.com/coconutbird/uwpdumper/internal/apps/uwpdumper/cmds"
	"github.com/coconutbird/uwpdumper/internal/runtime"
)

func main() {
	var execErr error

	rt := runtime.NewHostRuntime()
	defer rt.Finalize("uwpdumper", "Type 'uwpdumper help' to get help.", &execErr)

	execErr = uwpdumper.Execute(rt)
}
