// Package dotdir resolves the .forumsearch/ directory that holds config.toml.
package dotdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the name of the forumsearch config directory.
	DirName = ".forumsearch"

	// EnvDir overrides the home directory fallback when set.
	EnvDir = "FORUMSEARCH_CONFIG_DIR"
)

type Manager struct {
	getwd   func() (string, error)
	homeDir func() (string, error)
}

func NewManager() *Manager {
	return &Manager{
		getwd:   os.Getwd,
		homeDir: os.UserHomeDir,
	}
}

// Target returns the absolute path of the config directory, creating it when
// missing. Precedence:
//  1. overrideDir
//  2. ./.forumsearch/ when it exists
//  3. $FORUMSEARCH_CONFIG_DIR
//  4. ~/.forumsearch/
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

func (m *Manager) resolve(overrideDir string) (string, error) {
	if overrideDir != "" {
		return overrideDir, nil
	}

	local, err := m.LocalPath()
	if err != nil {
		return "", err
	}
	if isDir(local) {
		return local, nil
	}

	if env := os.Getenv(EnvDir); env != "" {
		return env, nil
	}

	home, err := m.homeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// LocalPath returns ./.forumsearch/ for the current working directory without
// creating it.
func (m *Manager) LocalPath() (string, error) {
	cwd, err := m.getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return filepath.Join(cwd, DirName), nil
}

// InitLocal creates ./.forumsearch/ and returns its path. created is false
// when the directory was already there.
func (m *Manager) InitLocal() (dir string, created bool, err error) {
	dir, err = m.LocalPath()
	if err != nil {
		return "", false, err
	}

	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir, false, nil
	case err == nil:
		return "", false, fmt.Errorf("%s exists and is not a directory", dir)
	case !errors.Is(err, os.ErrNotExist):
		return "", false, fmt.Errorf("checking %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, true, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
