package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"bennypowers.dev/a11yaudit/internal/audit"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/remediate"
	"github.com/spf13/cobra"
)

type remediateCommand struct {
	g           *globalFlags
	flags       auditFlags
	outputDir   string
	inPlace     bool
	changesPath string
	patchesPath string
	format      string
}

// NewRemediateCommand creates the remediate subcommand
func NewRemediateCommand(g *globalFlags) *cobra.Command {
	rc := &remediateCommand{g: g}
	cmd := &cobra.Command{
		Use:   "remediate <file-or-directory>...",
		Short: "Audit documents and fix what can be fixed automatically",
		Long: `Audit HTML documents, then remediate them:
  - failing text, border, outline, fill and stroke colors are replaced
    with the nearest color that meets the threshold
  - links, required fields, validation errors and status badges that
    rely on color alone gain an underline, text, ARIA or an icon
  - positive tabindex values and needless tabindex="0" are removed
  - elements sharing a parent are reordered to match the visual order
  - skip-link targets are made focusable

Remediated documents are written to --output-dir (or over the inputs
with --in-place). The change log goes to --changes as JSON.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.run(cmd, args, cmd.OutOrStdout())
		},
	}
	rc.flags.register(cmd)
	fl := cmd.Flags()
	fl.StringVarP(&rc.outputDir, "output-dir", "o", "remediated", "directory for remediated documents")
	fl.BoolVar(&rc.inPlace, "in-place", false, "overwrite the input documents")
	fl.StringVar(&rc.changesPath, "changes", "", "write the change log as JSON to this file")
	fl.StringVarP(&rc.patchesPath, "patches", "p", "", "JSON(C) file of suggested patches to apply after remediation")
	fl.StringVarP(&rc.format, "format", "f", "text", "output format: text or json")
	return cmd
}

func (rc *remediateCommand) run(cmd *cobra.Command, args []string, out io.Writer) error {
	documents, sheets, err := expandInputs(args)
	if err != nil {
		return err
	}
	if len(documents) == 0 {
		return fmt.Errorf("no HTML documents in %v", args)
	}

	opts, cfg, err := rc.flags.options(cmd, rc.g, sheets)
	if err != nil {
		return err
	}
	opts.Remediate = true
	if rc.patchesPath != "" {
		if opts.Patches, err = remediate.LoadPatches(rc.patchesPath); err != nil {
			return err
		}
	}

	started := time.Now()
	results, err := audit.Files(cmd.Context(), documents, opts, cfg.Workers)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Error != "" {
			continue
		}
		dest, err := rc.destination(r.Path)
		if err != nil {
			return err
		}
		if err := writeDocument(dest, r.HTML()); err != nil {
			return err
		}
		log.Info("Wrote %s (%d changes)", dest, remediate.Applied(r.Changes))
	}

	report := newReport(cfg.ContrastLevel, started, results)
	if rc.changesPath != "" {
		if err := writeChangeLog(rc.changesPath, results); err != nil {
			return err
		}
	}
	if rc.format == "json" {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		writeText(out, newPalette(colorEnabled(out, rc.g.noColor)), results)
		fmt.Fprintf(out, "%d change(s) applied\n", report.Changes)
	}

	if n := audit.Failed(results); n > 0 {
		return fmt.Errorf("%d document(s) could not be remediated", n)
	}
	return nil
}

func (rc *remediateCommand) destination(path string) (string, error) {
	if rc.inPlace {
		return path, nil
	}
	if err := os.MkdirAll(rc.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return filepath.Join(rc.outputDir, filepath.Base(path)), nil
}

func writeDocument(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // G306: remediated HTML is not secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// changeLog is the on-disk audit trail, keyed by document path
type changeLog map[string][]remediate.Change

func writeChangeLog(path string, results []audit.Result) error {
	entries := changeLog{}
	for _, r := range results {
		if len(r.Changes) > 0 {
			entries[r.Path] = r.Changes
		}
	}
	f, err := os.Create(path) //nolint:gosec // G304: path comes from the --changes flag
	if err != nil {
		return fmt.Errorf("failed to create change log: %w", err)
	}
	defer f.Close()
	return writeJSON(f, entries)
}
