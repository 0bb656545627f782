// Package config loads audit settings from YAML or JSON(C) files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/visualorder"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// DefaultFileNames are searched, in order, by LoadFromDir
var DefaultFileNames = []string{".a11yaudit.yaml", ".a11yaudit.yml", ".a11yaudit.json", ".a11yaudit.jsonc"}

var (
	// ErrInvalidLevel is returned for a contrast level other than AA or AAA
	ErrInvalidLevel = errors.New("invalid contrast level")
	// ErrInvalidThreshold is returned for a negative row grouping threshold
	ErrInvalidThreshold = errors.New("invalid row grouping threshold")
)

// Config holds the audit settings
type Config struct {
	// ContrastLevel is AA or AAA
	ContrastLevel string `yaml:"contrastLevel" json:"contrastLevel"`
	// RowGroupingThreshold is the vertical tolerance, in pixels, for
	// placing elements on the same visual row
	RowGroupingThreshold float64 `yaml:"rowGroupingThreshold" json:"rowGroupingThreshold"`
	// ReorderDOMForVisualOrder lets remediation move elements
	ReorderDOMForVisualOrder bool `yaml:"reorderDomForVisualOrder" json:"reorderDomForVisualOrder"`
	// Stylesheets are glob patterns for external CSS, relative to the
	// config file
	Stylesheets []string `yaml:"stylesheets" json:"stylesheets"`
	// ExtendedColors accepts every CSS color syntax, not just hex, rgb, hsl
	// and named colors
	ExtendedColors bool   `yaml:"extendedColors" json:"extendedColors"`
	LogLevel       string `yaml:"logLevel" json:"logLevel"`
	// Workers bounds how many documents are audited at once
	Workers int `yaml:"workers" json:"workers"`
	// Checks limits which rule modules run; empty runs all of them
	Checks []string `yaml:"checks" json:"checks"`
}

// DefaultConfig returns the settings used when no file is present
func DefaultConfig() *Config {
	return &Config{
		ContrastLevel:            string(contrast.AA),
		RowGroupingThreshold:     visualorder.DefaultThreshold,
		ReorderDOMForVisualOrder: true,
		LogLevel:                 "info",
		Workers:                  runtime.NumCPU(),
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // G304: config path comes from the user
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("No config at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromDir loads the first of DefaultFileNames present in dir. The
// returned path is empty when none exists.
func LoadFromDir(dir string) (*Config, string, error) {
	for _, name := range DefaultFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			cfg, err := Load(path)
			return cfg, path, err
		}
	}
	return DefaultConfig(), "", nil
}

// Validate normalizes the config and rejects values the audit cannot use
func (c *Config) Validate() error {
	level, err := contrast.ParseLevel(c.ContrastLevel)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.ContrastLevel)
	}
	c.ContrastLevel = string(level)

	if c.RowGroupingThreshold < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.RowGroupingThreshold)
	}
	if c.RowGroupingThreshold == 0 {
		c.RowGroupingThreshold = visualorder.DefaultThreshold
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// Level returns the parsed contrast level
func (c *Config) Level() contrast.Level {
	level, err := contrast.ParseLevel(c.ContrastLevel)
	if err != nil {
		return contrast.AA
	}
	return level
}

// ResolveStylesheets expands the stylesheet patterns under baseDir and
// returns the matching files, sorted and without duplicates. Absolute
// patterns are used as they are.
func (c *Config) ResolveStylesheets(baseDir string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range c.Stylesheets {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad stylesheet pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			log.Warn("Stylesheet pattern %q matched no files", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
