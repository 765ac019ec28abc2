// Package paths resolves the configuration and data directory locations.
// Both default to directories under the current working directory so that a
// catalog lives next to the files it describes.
package paths

import (
	"os"
	"path/filepath"
)

// CWD-relative default directory names.
const (
	DefaultConfigDirName = ".pustaka"
	DefaultDataDirName   = ".pustaka-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "PUSTAKA_CONFIG_DIR"
	EnvDataDir   = "PUSTAKA_DATA_DIR"
)

// getwd is replaced in tests.
var getwd = os.Getwd

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > PUSTAKA_CONFIG_DIR env > $(CWD)/.pustaka.
// The result is always absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultConfigDirName)
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > PUSTAKA_DATA_DIR env > $(CWD)/.pustaka-db.
// The result is always absolute.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	return cwdJoin(DefaultDataDirName)
}

// ResolveBackupDir returns where scheduled CSV backups are written: the
// configured directory when set, otherwise a "backups" directory inside
// dataDir.
func ResolveBackupDir(configYAMLValue, dataDir string) (string, error) {
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	return filepath.Join(dataDir, "backups"), nil
}

func cwdJoin(name string) (string, error) {
	cwd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, name), nil
}
