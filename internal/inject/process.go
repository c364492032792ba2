package inject

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessInfo is the candidate-target view used by the CLI picker.
type ProcessInfo struct {
	PID  uint32
	Name string
}

// OptionLabel is the line shown for this process in the interactive picker.
func (p ProcessInfo) OptionLabel() string {
	return fmt.Sprintf("%s (pid %d)", p.Name, p.PID)
}

// OptionID identifies the process in picker logic.
func (p ProcessInfo) OptionID() string {
	return fmt.Sprintf("%d", p.PID)
}

// FindByName returns every running process whose executable name contains
// name, case-insensitively and with or without the .exe suffix. Substring
// matching keeps long decorated executable names reachable from a short
// query.
func FindByName(name string) ([]ProcessInfo, error) {
	want := normalizeExeName(name)
	all, err := ListProcesses()
	if err != nil {
		return nil, err
	}
	var out []ProcessInfo
	for _, p := range all {
		if strings.Contains(normalizeExeName(p.Name), want) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListPackaged enumerates running processes that carry package identity,
// the only valid injection targets. On platforms without a package model it
// falls back to the full list.
func ListPackaged() ([]ProcessInfo, error) {
	all, err := ListProcesses()
	if err != nil {
		return nil, err
	}
	return filterPackaged(all), nil
}

// ListProcesses enumerates running processes, sorted by name then pid.
// Processes whose name cannot be read (typically protected system
// processes) are omitted.
func ListProcesses() ([]ProcessInfo, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || name == "" {
			continue
		}
		out = append(out, ProcessInfo{PID: uint32(p.Pid), Name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		}
		return out[i].PID < out[j].PID
	})
	return out, nil
}

func normalizeExeName(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".exe")
}
