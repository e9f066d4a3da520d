package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.yaml.in/yaml/v3"

	"github.com/yndnr/modi-go/internal/cli/output"
)

// EnvProfile overrides the profile location.
const EnvProfile = "MODI_CLI_PROFILE"

// DefaultPath returns the profile path: $MODI_CLI_PROFILE, or
// ~/.modi/cli.yaml.
func DefaultPath() string {
	if p := os.Getenv(EnvProfile); p != "" {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".modi", "cli.yaml")
	}
	return filepath.Join(homeDir, ".modi", "cli.yaml")
}

// Load reads the profile at path. A missing file yields Default. Fields
// the file leaves out keep their default.
func Load(fsys afero.Fs, path string) (*Profile, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path, readable by the owner only.
func Save(fsys afero.Fs, p *Profile, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, path, data, 0o600)
}

// Validate checks the output format.
func (p *Profile) Validate() error {
	_, err := output.ParseFormat(p.Output)
	return err
}
