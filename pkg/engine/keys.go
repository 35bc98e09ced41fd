package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/accudio/llm-cohere/pkg/modeladapter"
)

const (
	noteKey  = "// Note"
	noteText = "This file stores secret API credentials. Do not share!"
)

// KeyStore reads and writes API keys kept in a JSON file of name to key.
type KeyStore struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

// NewKeyStore returns a KeyStore backed by the file at path. The file need
// not exist until the first Set.
func NewKeyStore(path string) *KeyStore {
	return &KeyStore{path: path}
}

// SetLogger sets the logger used to report an unreadable key file during
// ResolveKey. Nil discards.
func (s *KeyStore) SetLogger(l *slog.Logger) { s.log = l }

// Path returns the backing file path.
func (s *KeyStore) Path() string { return s.path }

// Load returns all stored keys. A missing file yields an empty map.
func (s *KeyStore) Load() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

func (s *KeyStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("engine: read keys: %w", err)
	}

	keys := map[string]string{}
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("engine: parse keys %s: %w", s.path, err)
	}
	delete(keys, noteKey)

	return keys, nil
}

// Get returns the key stored under name.
func (s *KeyStore) Get(name string) (string, bool, error) {
	keys, err := s.Load()
	if err != nil {
		return "", false, err
	}

	v, ok := keys[name]
	return v, ok, nil
}

// Set stores value under name, creating the file with 0600 permissions.
func (s *KeyStore) Set(name, value string) error {
	if name == "" || name == noteKey {
		return fmt.Errorf("engine: invalid key name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keys, err := s.load()
	if err != nil {
		return err
	}
	keys[name] = value
	keys[noteKey] = noteText

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("engine: encode keys: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("engine: create keys dir: %w", err)
	}

	if err := os.WriteFile(s.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("engine: write keys: %w", err)
	}

	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(s.path, 0o600); err != nil {
		return fmt.Errorf("engine: chmod keys: %w", err)
	}

	return nil
}

// Names returns the stored key names, sorted.
func (s *KeyStore) Names() ([]string, error) {
	keys, err := s.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// ResolveKey picks the key for a call. An explicit value naming a stored key
// resolves to that key; any other non-empty explicit value is the key itself.
// Otherwise the key stored under keyName is used, then the envVar
// environment variable. An unreadable key file is logged and treated as
// empty, so explicit and environment keys still work; it is reported only
// when no key resolves.
func (s *KeyStore) ResolveKey(explicit, keyName, envVar string) (string, error) {
	keys, loadErr := s.Load()
	if loadErr != nil {
		s.logger().Warn("ignoring unreadable key file", "path", s.path, "error", loadErr)
		keys = map[string]string{}
	}

	if explicit != "" {
		if v, ok := keys[explicit]; ok {
			return v, nil
		}
		return explicit, nil
	}

	if v, ok := keys[keyName]; ok && v != "" {
		return v, nil
	}

	if envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return v, nil
		}
	}

	missing := &modeladapter.MissingCredentialError{KeyName: keyName, EnvVar: envVar}
	if loadErr != nil {
		return "", fmt.Errorf("%w (%w)", missing, loadErr)
	}
	return "", missing
}

func (s *KeyStore) logger() *slog.Logger {
	if s.log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.log
}
