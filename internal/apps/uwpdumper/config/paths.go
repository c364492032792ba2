package config

import (
	"os"
	"path/filepath"
)

// ConfigBasePath is the per-user directory holding the config file and the
// state database.
func ConfigBasePath() string {
	homedir, err := os.UserHomeDir()
	if err != nil {
		homedir = "."
	}
	return filepath.Join(homedir, ".uwpdumper")
}

func ConfigFile() string {
	return filepath.Join(ConfigBasePath(), "config.yaml")
}

func StateDBFile() string {
	return filepath.Join(ConfigBasePath(), "state.db")
}

// DefaultPayloadPath is the payload module's default location: next to the
// controller executable.
func DefaultPayloadPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(exe), "uwpdumper-payload.dll"), nil
}
