package llmdir

import (
	"errors"
	"fmt"
	"os"
)

// ErrConfigExists is returned by WriteConfig when the config file is present
// and overwriting was not requested.
var ErrConfigExists = errors.New("config already exists")

// EnsureStructure creates the user directory if it is missing. It is safe to
// call multiple times.
func EnsureStructure(d Dir) error {
	if err := os.MkdirAll(d.root, 0o750); err != nil {
		return fmt.Errorf("llmdir: create dir: %w", err)
	}

	return nil
}

// WriteConfig writes configYAML to the config path, creating the directory
// first. An existing file is kept unless force is set.
func WriteConfig(d Dir, configYAML []byte, force bool) error {
	if err := EnsureStructure(d); err != nil {
		return err
	}

	path := d.ConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("llmdir: %s: %w", path, ErrConfigExists)
	}

	if err := os.WriteFile(path, configYAML, 0o600); err != nil {
		return fmt.Errorf("llmdir: write config: %w", err)
	}

	return nil
}
