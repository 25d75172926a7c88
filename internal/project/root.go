// Package project provides project discovery and loading functionality.
package project

import (
	"errors"
	"os"
	"path/filepath"
)

// ConfigDirName is the name of the treediff configuration directory.
const ConfigDirName = ".treediff"

// ConfigFileBase is the configuration file name without its extension.
const ConfigFileBase = "config"

// ConfigExtensions lists the accepted configuration file extensions in
// lookup order.
var ConfigExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// ErrNoProjectRoot is returned when no .treediff/config file is found.
var ErrNoProjectRoot = errors.New(".treediff/config not found: not a treediff project (or any parent up to the root)")

// FindRoot walks up from the current working directory until it finds a
// .treediff/config file.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds a
// .treediff/config file.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if configFile(dir) != "" {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}

// configFile returns the first configuration file under root, or "".
func configFile(root string) string {
	for _, ext := range ConfigExtensions {
		path := filepath.Join(root, ConfigDirName, ConfigFileBase+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
