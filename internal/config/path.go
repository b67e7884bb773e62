// Package config resolves the balance configuration from files, environment and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const appName = "balance"

// ExpandPath resolves $VAR references and then a leading ~, so a variable
// such as BALANCE_DATA_DIR=~/ledgers may itself point into the home directory.
func ExpandPath(path string) string {
	path = os.ExpandEnv(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// ConfigDirs lists the directories searched for config.yaml, most specific
// first: $XDG_CONFIG_HOME/balance (or ~/.config/balance), then the working
// directory.
func ConfigDirs() ([]string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return []string{filepath.Join(base, appName), "."}, nil
}
