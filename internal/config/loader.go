package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the config file names looked up in the working directory.
var FileNames = []string{".hexovault.yml", ".hexovault.yaml"}

// LoadOptions controls Load.
type LoadOptions struct {
	// WorkingDir is searched for a config file. Defaults to the current
	// directory.
	WorkingDir string
	// ExplicitPath is a config file named on the command line. It must exist.
	ExplicitPath string
	// IgnoreEnv skips HEXOVAULT_* variables.
	IgnoreEnv bool
	// Override applies command-line flags last.
	Override func(*Config)
}

// LoadResult is a resolved configuration and where it came from.
type LoadResult struct {
	Config *Config
	// LoadedFrom is the config file that was read, or "".
	LoadedFrom string
}

// Load resolves and validates the configuration.
func Load(opts LoadOptions) (*LoadResult, error) {
	cfg := Default()
	result := &LoadResult{Config: cfg}

	path, err := findFile(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
		result.LoadedFrom = path
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.Override != nil {
		opts.Override(cfg)
	}

	if err := Validate(cfg); err != nil {
		if path != "" {
			var verr *ValidationError
			if errors.As(err, &verr) && verr.FilePath == "" {
				verr.FilePath = path
			}
		}
		return nil, err
	}
	return result, nil
}

func findFile(opts LoadOptions) (string, error) {
	if opts.ExplicitPath != "" {
		if _, err := os.Stat(opts.ExplicitPath); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return opts.ExplicitPath, nil
	}

	dir := opts.WorkingDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		dir = wd
	}
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			return path, nil
		}
	}
	return "", nil
}

// loadFile decodes a YAML file over cfg. Keys absent from the file keep
// their current values.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
