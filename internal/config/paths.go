// Package config provides settings and path management for ssm-commander.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// HomeEnv overrides the data directory.
const HomeEnv = "SSMC_HOME"

// Paths holds the locations of every file ssm-commander reads or writes.
type Paths struct {
	// BaseDir is the data directory (~/.ssm-commander)
	BaseDir string
}

// DefaultPaths returns the default paths. $SSMC_HOME takes precedence over
// ~/.ssm-commander, which is where earlier releases kept their commands file.
func DefaultPaths() *Paths {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return &Paths{BaseDir: dir}
	}
	return &Paths{BaseDir: filepath.Join(homeDir(), ".ssm-commander")}
}

// CommandsFile returns the path to the saved commands file.
func (p *Paths) CommandsFile() string {
	return filepath.Join(p.BaseDir, "config.json")
}

// SettingsFile returns the path to the settings file.
func (p *Paths) SettingsFile() string {
	return filepath.Join(p.BaseDir, "settings.yaml")
}

// DatabaseFile returns the path to the SQLite run history.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.BaseDir, "history.db")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.BaseDir, "logs")
}

// LogFile returns the path to the log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "ssm-commander.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.BaseDir, p.LogDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
