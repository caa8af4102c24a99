// Package paths resolves where boards and configuration live on disk.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// BoardDirEnv names the environment variable that overrides the board directory.
const BoardDirEnv = "KANBAN_DIR"

// DefaultBoardDirName is the board directory used when nothing overrides it.
const DefaultBoardDirName = ".kanban"

// HomeDir returns the current user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

// WorkingDir returns the current working directory.
func WorkingDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return dir, nil
}

// GlobalConfigPath returns the path of the user-wide config file.
func GlobalConfigPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kanban", "config.toml"), nil
}

// DefaultBoardDir returns $KANBAN_DIR, or .kanban under the working directory.
func DefaultBoardDir() (string, error) {
	if dir := os.Getenv(BoardDirEnv); dir != "" {
		return filepath.Abs(dir)
	}
	wd, err := WorkingDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, DefaultBoardDirName), nil
}

// ResolveWithDefault returns override if set, otherwise the result of defaultFn.
func ResolveWithDefault(override string, defaultFn func() (string, error)) (string, error) {
	if override != "" {
		return override, nil
	}
	return defaultFn()
}
