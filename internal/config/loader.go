package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".govharvest"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File holds per-site overrides loaded from the YAML configuration file.
//
// Example:
//
//	sites:
//	  portal.example.gov:
//	    delay: 5s
//	    headers:
//	      Accept-Language: "en-US"
//	  slow.county.example.us:
//	    delay: 10s
//	    max_depth: 1
type File struct {
	// Sites maps a host to its overrides.
	Sites map[string]SiteConfig `yaml:"sites"`
}

// SiteConfig contains per-site crawl overrides.
type SiteConfig struct {
	// Headers are extra HTTP headers sent to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay overrides the per-host delay for this site.
	Delay time.Duration `yaml:"delay,omitempty"`

	// MaxDepth overrides the crawl depth for this site. Zero means use
	// the run-level setting.
	MaxDepth int `yaml:"max_depth,omitempty"`
}

// SiteFor returns the overrides for a host, if any.
func (f *File) SiteFor(host string) (SiteConfig, bool) {
	if f == nil || f.Sites == nil {
		return SiteConfig{}, false
	}
	sc, ok := f.Sites[host]
	return sc, ok
}

// LoadConfigFile loads per-site overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers
// should treat that as fatal only when the path was explicitly given.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .govharvest in the current directory
//  3. Look for .govharvest in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
