// Package home manages the qaflow home directory: config file, local blob
// data, file-based secrets and prompt overrides.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the qaflow home directory.
	DefaultDirName = ".qaflow"

	// DataDirName backs file:// locators.
	DataDirName = "data"

	// SecretsDirName holds <name>.json secrets for the file source.
	SecretsDirName = "secrets"

	// PromptsDirName holds prompt override templates.
	PromptsDirName = "prompts"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the qaflow home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.qaflow).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DataPath returns the root of local blob storage.
func (d *Dir) DataPath() string {
	return filepath.Join(d.path, DataDirName)
}

// SecretsPath returns the directory for file-based secrets.
func (d *Dir) SecretsPath() string {
	return filepath.Join(d.path, SecretsDirName)
}

// PromptsPath returns the directory for prompt overrides.
func (d *Dir) PromptsPath() string {
	return filepath.Join(d.path, PromptsDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// EnsureExists creates the home directory and its subdirectories.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.DataPath(), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.MkdirAll(d.SecretsPath(), 0o700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}
	return nil
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
