// Package cmd holds the a11y-audit command line
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"bennypowers.dev/a11yaudit/internal/audit"
	"bennypowers.dev/a11yaudit/internal/config"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/parser"
	"bennypowers.dev/a11yaudit/internal/version"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	logLevel   string
	noColor    bool
}

// NewRootCommand creates the a11y-audit root command
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:   "a11y-audit",
		Short: "WCAG accessibility auditor for HTML documents",
		Long: `a11y-audit checks HTML documents against WCAG 2.x success criteria:
  - 1.4.3 / 1.4.6 text contrast
  - 1.4.11 non-text contrast of controls and icons
  - 1.4.1 information conveyed by color alone
  - 2.4.3 focus order against the visual layout

It can also remediate what it finds: rewrite failing colors, strip
harmful tabindex values and reorder elements to match the visual order.`,
		Version:      version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if g.logLevel == "" {
				return nil
			}
			level, err := log.ParseLevel(g.logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (default: .a11yaudit.{yaml,yml,json,jsonc} in the working directory)")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(NewAuditCommand(g))
	cmd.AddCommand(NewRemediateCommand(g))
	cmd.AddCommand(NewApplyCommand(g))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// loadConfig reads the --config file, or the default file in the working
// directory. The returned directory anchors relative stylesheet globs.
func (g *globalFlags) loadConfig() (*config.Config, string, error) {
	if g.configPath != "" {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return nil, "", err
		}
		return cfg, filepath.Dir(g.configPath), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, path, err := config.LoadFromDir(wd)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		log.Debug("Using config %s", path)
	}
	return cfg, wd, nil
}

// auditFlags override config values for one run
type auditFlags struct {
	level          string
	threshold      float64
	checks         []string
	stylesheets    []string
	extendedColors bool
	workers        int
	noReorder      bool
}

func (f *auditFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.level, "level", "l", "", "contrast level: AA or AAA")
	fl.Float64Var(&f.threshold, "threshold", 0, "row grouping threshold in pixels")
	fl.StringSliceVar(&f.checks, "checks", nil, "checks to run (default: all)")
	fl.StringSliceVarP(&f.stylesheets, "stylesheet", "s", nil, "extra stylesheet globs")
	fl.BoolVar(&f.extendedColors, "extended-colors", false, "accept every CSS color syntax")
	fl.IntVarP(&f.workers, "workers", "j", 0, "documents audited in parallel")
	fl.BoolVar(&f.noReorder, "no-reorder", false, "never move elements to match the visual order")
}

// options merges config, flags and any .css arguments into audit options
func (f *auditFlags) options(cmd *cobra.Command, g *globalFlags, extraSheets []string) (audit.Options, *config.Config, error) {
	cfg, baseDir, err := g.loadConfig()
	if err != nil {
		return audit.Options{}, nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("level") {
		cfg.ContrastLevel = f.level
	}
	if fl.Changed("threshold") {
		cfg.RowGroupingThreshold = f.threshold
	}
	if fl.Changed("checks") {
		cfg.Checks = f.checks
	}
	if fl.Changed("extended-colors") {
		cfg.ExtendedColors = f.extendedColors
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if f.noReorder {
		cfg.ReorderDOMForVisualOrder = false
	}
	if g.logLevel == "" && cfg.LogLevel != "" {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetLevel(level)
		}
	}
	if err := cfg.Validate(); err != nil {
		return audit.Options{}, nil, err
	}

	opts, err := audit.OptionsFromConfig(cfg, baseDir)
	if err != nil {
		return audit.Options{}, nil, err
	}

	// Flag globs are relative to the working directory, not the config
	extra := *config.DefaultConfig()
	extra.Stylesheets = append(append([]string{}, f.stylesheets...), extraSheets...)
	wd, _ := os.Getwd()
	paths, err := extra.ResolveStylesheets(wd)
	if err != nil {
		return audit.Options{}, nil, err
	}
	opts.Stylesheets = append(opts.Stylesheets, parser.ReadStylesheets(paths)...)
	return opts, cfg, nil
}
