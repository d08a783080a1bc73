package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/folio-dev/folio/core/logger"
	"gopkg.in/yaml.v3"
)

// RoleConstraint bounds how many files a role may hold and which extensions
// are acceptable for it. Zero MaxFiles means unlimited; an empty extension
// list allows any extension.
type RoleConstraint struct {
	MaxFiles          int      `yaml:"max_files"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

type Config struct {
	AppName          string                    `yaml:"app_name"`
	CacheFile        string                    `yaml:"cache_file"`
	OutputDir        string                    `yaml:"output_dir"`
	Exclude          []string                  `yaml:"exclude"`
	Workers          int                       `yaml:"workers"`
	ContentCacheSize int                       `yaml:"content_cache_size"`
	Roles            map[string]RoleConstraint `yaml:"roles"`
}

func Default() *Config {
	return &Config{
		AppName:          "folio",
		CacheFile:        filepath.Join(".folio", "cache.json"),
		OutputDir:        "dist",
		Workers:          10,
		ContentCacheSize: 256,
	}
}

// Load reads folio.yaml from the working directory, falling back to defaults
// when no config file exists. Unset fields keep their default values.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}
	return LoadFrom(wd)
}

// LoadFrom reads folio.yaml from the given directory.
func LoadFrom(dir string) (*Config, error) {
	cfg := Default()

	filePath := filepath.Join(dir, "folio.yaml")
	if _, err := os.Stat(filePath); err != nil {
		logger.Debug("No config file found in %s, using default config", dir)
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = Default().Workers
	}
	if cfg.ContentCacheSize <= 0 {
		cfg.ContentCacheSize = Default().ContentCacheSize
	}
	if cfg.CacheFile == "" {
		cfg.CacheFile = Default().CacheFile
	}
	logger.Debug("Config file found: %s", filePath)

	return cfg, nil
}
