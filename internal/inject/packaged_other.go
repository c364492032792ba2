//go:build !windows

package inject

func filterPackaged(procs []ProcessInfo) []ProcessInfo {
	return procs
}
