//go:build windows

// Command uwpdumper-payload builds as a c-shared module, the DLL the
// controller injects into the target process:
//
//	go build -buildmode=c-shared -o uwpdumper-payload.dll ./cmd/uwpdumper-payload
//
// Loading the module starts the Go runtime, whose init below spawns the
// worker. The worker attaches to the controller's channel, runs the dump and
// unloads the module again.
package main

import "C"

import "github.com/coconutbird/uwpdumper/internal/payload"

func init() {
	go payload.Run()
}

// main is required by buildmode=c-shared but never runs.
func main() {}
