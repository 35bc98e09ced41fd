// Package llmdir encapsulates all path knowledge for the user directory
// shared with the llm command line tool. It provides a Dir value object with
// accessors for the key store, the plugin config, and the .env file.
package llmdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvVar overrides the user directory location.
const EnvVar = "LLM_USER_PATH"

// appName is the directory created under the OS config dir.
const appName = "io.datasette.llm"

// Dir is a value object that resolves paths within the user directory.
type Dir struct {
	root string
}

// New creates a Dir rooted at the given path. The path is converted to an
// absolute path. No I/O is performed; use EnsureStructure to create it.
func New(root string) Dir {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}

	return Dir{root: abs}
}

// Default returns the user directory: $LLM_USER_PATH when set, otherwise
// io.datasette.llm under the OS config directory.
func Default() (Dir, error) {
	if p := os.Getenv(EnvVar); p != "" {
		return New(p), nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return Dir{}, fmt.Errorf("llmdir: %w", err)
	}

	return New(filepath.Join(base, appName)), nil
}

// Root returns the absolute path to the user directory.
func (d Dir) Root() string { return d.root }

// KeysPath returns the path to the API key store.
func (d Dir) KeysPath() string { return filepath.Join(d.root, "keys.json") }

// ConfigPath returns the path to the plugin config file.
func (d Dir) ConfigPath() string { return filepath.Join(d.root, "cohere.yaml") }

// EnvPath returns the path to the .env file loaded at startup.
func (d Dir) EnvPath() string { return filepath.Join(d.root, ".env") }

// Exists reports whether the user directory exists on disk.
func (d Dir) Exists() bool {
	info, err := os.Stat(d.root)

	return err == nil && info.IsDir()
}
