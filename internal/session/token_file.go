package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const tokenFileMode = 0o600

// TokenFile stores the CLI's bearer token between invocations.
type TokenFile struct {
	path string
}

// NewTokenFile returns a token file at path.
func NewTokenFile(path string) *TokenFile {
	return &TokenFile{path: path}
}

// Path returns the file location.
func (f *TokenFile) Path() string {
	return f.path
}

// Load returns the saved token, or "" when none has been saved.
func (f *TokenFile) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes token, creating the parent directory if needed.
func (f *TokenFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token+"\n"), tokenFileMode); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(f.path, tokenFileMode); err != nil {
		return fmt.Errorf("chmod token file: %w", err)
	}
	return nil
}

// Clear removes the saved token. A missing file is not an error.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
