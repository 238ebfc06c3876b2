package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of an optional config file. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Network struct {
		MaxConcurrentRequests *int    `yaml:"max_concurrent_requests"`
		RequestTimeoutSec     *int    `yaml:"request_timeout_sec"`
		ConnectTimeoutSec     *int    `yaml:"connect_timeout_sec"`
		ReadTimeoutSec        *int    `yaml:"read_timeout_sec"`
		UserAgent             *string `yaml:"user_agent"`
	} `yaml:"network"`
	Content struct {
		ExcludedKeywords []string `yaml:"excluded_keywords"`
		ContainerClasses []string `yaml:"container_classes"`
	} `yaml:"content"`
	FileIOLimit *int `yaml:"file_io_limit"`
}

// Load returns the default configuration overlaid with values from the YAML
// file at path. A missing file is not an error -- the defaults are returned
// as-is. A file that exists but cannot be parsed is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Network.MaxConcurrentRequests != nil {
		cfg.Network.MaxConcurrentRequests = *fc.Network.MaxConcurrentRequests
	}
	if fc.Network.RequestTimeoutSec != nil {
		cfg.Network.RequestTimeout = time.Duration(*fc.Network.RequestTimeoutSec) * time.Second
	}
	if fc.Network.ConnectTimeoutSec != nil {
		cfg.Network.ConnectTimeout = time.Duration(*fc.Network.ConnectTimeoutSec) * time.Second
	}
	if fc.Network.ReadTimeoutSec != nil {
		cfg.Network.ReadTimeout = time.Duration(*fc.Network.ReadTimeoutSec) * time.Second
	}
	if fc.Network.UserAgent != nil {
		cfg.Network.UserAgent = *fc.Network.UserAgent
	}
	if fc.Content.ExcludedKeywords != nil {
		cfg.Content.ExcludedKeywords = fc.Content.ExcludedKeywords
	}
	if fc.Content.ContainerClasses != nil {
		cfg.Content.ContainerClasses = fc.Content.ContainerClasses
	}
	if fc.FileIOLimit != nil {
		cfg.FileIOLimit = *fc.FileIOLimit
	}

	return cfg, nil
}
