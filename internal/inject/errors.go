// Package inject locates target processes and loads the payload module into
// them with a remote LoadLibraryW thread.
package inject

import "fmt"

// Stage names the injection step that failed. The stages map one to one onto
// the privileged operations involved, so a failure message tells the user
// whether to re-run elevated, pick another process or rebuild the payload.
type Stage string

const (
	StageOpenProcess  Stage = "open process"
	StageRemoteAlloc  Stage = "allocate remote memory"
	StageRemoteWrite  Stage = "write module path"
	StageRemoteThread Stage = "create remote thread"
	StageModuleLoad   Stage = "load module in target"
)

// InjectionError wraps a failing stage with its underlying cause.
type InjectionError struct {
	Stage Stage
	Err   error
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("inject: %s: %v", e.Stage, e.Err)
}

func (e *InjectionError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) error {
	return &InjectionError{Stage: stage, Err: err}
}
