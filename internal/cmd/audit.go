package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"bennypowers.dev/a11yaudit/internal/audit"
	"bennypowers.dev/a11yaudit/internal/issues"
	"github.com/spf13/cobra"
)

// ErrIssuesFound is returned when issues at or above --fail-on remain
var ErrIssuesFound = errors.New("accessibility issues found")

type auditCommand struct {
	g           *globalFlags
	flags       auditFlags
	format      string
	minSeverity string
	failOn      string
}

// NewAuditCommand creates the audit subcommand
func NewAuditCommand(g *globalFlags) *cobra.Command {
	a := &auditCommand{g: g}
	cmd := &cobra.Command{
		Use:   "audit <file-or-directory>...",
		Short: "Report accessibility issues in HTML documents",
		Long: `Audit HTML documents and report WCAG issues.

Arguments may be HTML files, directories (searched recursively for
*.html, *.htm and *.xhtml) or globs. CSS files among the arguments are
applied to every document before its own <style> elements.

Exit code: 0 unless --fail-on is set and a matching issue is found`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, cmd.OutOrStdout())
		},
	}
	a.flags.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&a.format, "format", "f", "text", "output format: text or json")
	fl.StringVar(&a.minSeverity, "min-severity", "", "hide issues below this severity: minor, major, critical")
	fl.StringVar(&a.failOn, "fail-on", "", "exit non-zero when an issue of this severity or worse is found")
	return cmd
}

func (a *auditCommand) run(cmd *cobra.Command, args []string, out io.Writer) error {
	if a.format != "text" && a.format != "json" {
		return fmt.Errorf("unknown format %q", a.format)
	}
	documents, sheets, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return fmt.Errorf("no HTML documents in %v", args)
	}

	opts, cfg, err := a.flags.options(cmd, a.g, sheets)
	if err != nil {
		return err
	}
	if a.minSeverity != "" {
		if opts.MinSeverity, err = issues.ParseSeverity(a.minSeverity); err != nil {
			return err
		}
	}
	var failOn issues.Severity
	if a.failOn != "" {
		if failOn, err = issues.ParseSeverity(a.failOn); err != nil {
			return err
		}
	}

	started := time.Now()
	results, err := audit.Files(cmd.Context(), documents, opts, cfg.Workers)
	if err != nil {
		return err
	}

	if a.format == "json" {
		if err := writeJSON(out, newReport(cfg.ContrastLevel, started, results)); err != nil {
			return err
		}
	} else {
		writeText(out, newPalette(colorEnabled(out, a.g.noColor)), results)
	}

	if n := audit.Failed(results); n > 0 {
		return fmt.Errorf("%d document(s) could not be audited", n)
	}
	if failOn != "" {
		for _, r := range results {
			if len(issues.Filter(r.Issues, failOn)) > 0 {
				return ErrIssuesFound
			}
		}
	}
	return nil
}
