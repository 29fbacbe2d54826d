// Package credentials persists the bearer token between process runs.
//
// The store holds exactly one credential entry under a fixed key, mirroring
// the single well-known slot the admin UI keeps in browser storage. It
// survives restarts until an explicit sign-out or a failed session
// rehydration clears it.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// TokenKey is the fixed name of the credential slot.
const TokenKey = "auth_token"

// Store is a file-backed key-value credential store.
type Store struct {
	path string
}

// NewStore creates a store persisting to the given file. The parent
// directory is created on first write, not here, so constructing a store
// never touches the disk.
func NewStore(path string) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("credentials: resolve path: %w", err)
	}
	return &Store{path: abs}, nil
}

// DefaultPath returns the conventional credential file location under the
// user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("credentials: user config dir: %w", err)
	}
	return filepath.Join(dir, "ansuz", "credentials.json"), nil
}

// Token returns the stored token. The second return is false when no token
// is stored; a missing file is not an error.
func (s *Store) Token() (string, bool) {
	entries, err := s.load()
	if err != nil {
		return "", false
	}
	tok, ok := entries[TokenKey]
	return tok, ok && tok != ""
}

// SetToken persists the token, replacing any previous value.
func (s *Store) SetToken(token string) error {
	entries, err := s.load()
	if err != nil {
		return err
	}
	if entries == nil {
		entries = map[string]string{}
	}
	entries[TokenKey] = token
	return s.save(entries)
}

// Clear removes the stored token. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	entries, err := s.load()
	if err != nil || entries == nil {
		return err
	}
	delete(entries, TokenKey)
	return s.save(entries)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("credentials: read %s: %w", s.path, err)
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		// A corrupt file is treated as empty; the next save rewrites it.
		return nil, nil
	}
	return entries, nil
}

func (s *Store) save(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("credentials: create dir: %w", err)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("credentials: encode: %w", err)
	}
	// Tokens are secrets; keep the file owner-only.
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("credentials: write %s: %w", s.path, err)
	}
	return nil
}
