package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/treediff/internal/config"
)

// Project represents a loaded treediff project.
type Project struct {
	Root       string
	ConfigPath string
	Config     *config.Config
	Warnings   []string
}

// LoadProject finds and loads a project from the current directory.
func LoadProject() (*Project, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return LoadProjectFrom(root)
}

// LoadProjectFrom loads a project from a specified root directory.
func LoadProjectFrom(root string) (*Project, error) {
	configPath := configFile(root)
	if configPath == "" {
		return nil, ErrNoProjectRoot
	}

	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	p := &Project{
		Root:       root,
		ConfigPath: configPath,
		Config:     cfg,
		Warnings:   warnings,
	}

	// A missing fixtures directory is fine until a suite is run.
	if info, err := os.Stat(p.FixturesDir()); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("fixtures path %q is not a directory", cfg.Fixtures.Directory)
	}

	return p, nil
}

// FixturesDir returns the absolute path to the fixtures directory.
func (p *Project) FixturesDir() string {
	if filepath.IsAbs(p.Config.Fixtures.Directory) {
		return p.Config.Fixtures.Directory
	}
	return filepath.Join(p.Root, p.Config.Fixtures.Directory)
}

// SuiteDir returns the absolute path to a suite directory.
func (p *Project) SuiteDir(suite string) string {
	return filepath.Join(p.FixturesDir(), suite)
}
