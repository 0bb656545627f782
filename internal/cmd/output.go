package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bennypowers.dev/a11yaudit/internal/audit"
	"bennypowers.dev/a11yaudit/internal/issues"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/parser"
	"bennypowers.dev/a11yaudit/internal/remediate"
	"bennypowers.dev/a11yaudit/internal/version"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
)

// Report is the JSON form of a run
type Report struct {
	RunID     string         `json:"run_id"`
	Version   string         `json:"version"`
	Level     string         `json:"contrast_level"`
	StartedAt time.Time      `json:"started_at"`
	Documents []audit.Result `json:"documents"`
	Summary   issues.Summary `json:"summary"`
	Changes   int            `json:"changes_applied"`
}

func newReport(level string, started time.Time, results []audit.Result) Report {
	var all []issues.Issue
	var changes []remediate.Change
	for _, r := range results {
		all = append(all, r.Issues...)
		changes = append(changes, r.Changes...)
	}
	return Report{
		RunID:     uuid.New().String(),
		Version:   version.GetVersion(),
		Level:     level,
		StartedAt: started.UTC(),
		Documents: results,
		Summary:   issues.Summarize(all),
		Changes:   remediate.Applied(changes),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// palette colors text output; every color is disabled off a terminal
type palette struct {
	critical, major, minor, path, dim, ok *color.Color
}

// colorEnabled reports whether w is a terminal and color was not refused
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newPalette(enabled bool) palette {
	p := palette{
		critical: color.New(color.FgRed, color.Bold),
		major:    color.New(color.FgYellow),
		minor:    color.New(color.FgCyan),
		path:     color.New(color.Bold, color.Underline),
		dim:      color.New(color.Faint),
		ok:       color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.critical, p.major, p.minor, p.path, p.dim, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s issues.Severity) *color.Color {
	switch s {
	case issues.Critical:
		return p.critical
	case issues.Major:
		return p.major
	}
	return p.minor
}

// writeText prints issues grouped by document, most severe first
func writeText(w io.Writer, p palette, results []audit.Result) {
	var all []issues.Issue
	for _, r := range results {
		p.path.Fprintln(w, r.Path)
		if r.Error != "" {
			p.critical.Fprintf(w, "  error: %s\n", r.Error)
			fmt.Fprintln(w)
			continue
		}
		list := append([]issues.Issue(nil), r.Issues...)
		issues.SortBySeverity(list)
		if len(list) == 0 {
			p.ok.Fprintln(w, "  no issues")
		}
		for _, is := range list {
			where := "-"
			if is.Line > 0 {
				where = fmt.Sprintf("%d", is.Line)
			}
			fmt.Fprintf(w, "  %5s  ", where)
			p.severity(is.Severity).Fprintf(w, "%-8s", is.Severity)
			fmt.Fprintf(w, " %-7s %s", is.WCAGCriterion, is.Type)
			if is.Selector != "" {
				p.dim.Fprintf(w, "  %s", is.Selector)
			}
			fmt.Fprintf(w, "\n         %s\n", is.Description)
		}
		for _, c := range r.Changes {
			writeChange(w, p, c)
		}
		fmt.Fprintln(w)
		all = append(all, list...)
	}

	total := issues.Summarize(all)
	fmt.Fprintf(w, "%d issue(s) in %d document(s):", total.Total, len(results))
	for _, s := range []issues.Severity{issues.Critical, issues.Major, issues.Minor} {
		fmt.Fprint(w, " ")
		p.severity(s).Fprintf(w, "%d %s", total.BySeverity[s], s)
	}
	fmt.Fprintln(w)
}

func writeChange(w io.Writer, p palette, c remediate.Change) {
	mark := p.ok.Sprint("fixed")
	if c.Skipped {
		mark = p.dim.Sprint("skipped")
	}
	target := c.Element
	switch {
	case target != "":
	case c.Parent != "":
		target = c.Parent
	default:
		target = strings.Join(c.Elements, ",")
	}
	fmt.Fprintf(w, "  %s %s %s", mark, c.Type, target)
	if c.OldValue != "" || c.NewValue != "" {
		fmt.Fprintf(w, " %q -> %q", c.OldValue, c.NewValue)
	}
	fmt.Fprintf(w, ": %s\n", c.Reason)
}

var htmlPatterns = []string{"**/*.html", "**/*.htm", "**/*.xhtml"}

// expandInputs turns arguments into document and stylesheet paths.
// Directories are searched recursively; globs are expanded.
func expandInputs(args []string) (documents, stylesheets []string, err error) {
	var paths []string
	for _, arg := range args {
		info, statErr := os.Stat(arg)
		switch {
		case statErr == nil && info.IsDir():
			for _, pattern := range htmlPatterns {
				m, err := doublestar.FilepathGlob(filepath.Join(arg, pattern))
				if err != nil {
					return nil, nil, fmt.Errorf("failed to search %s: %w", arg, err)
				}
				paths = append(paths, m...)
			}
		case statErr == nil:
			paths = append(paths, arg)
		default:
			m, err := doublestar.FilepathGlob(arg)
			if err != nil {
				return nil, nil, fmt.Errorf("bad pattern %q: %w", arg, err)
			}
			if len(m) == 0 {
				// kept so the missing file shows up as a failed document
				m = []string{arg}
			}
			paths = append(paths, m...)
		}
	}
	sort.Strings(paths)

	documents, stylesheets, unknown := parser.Partition(paths)
	for _, u := range unknown {
		log.Warn("Ignoring %s: not an HTML or CSS file", u)
	}
	return documents, stylesheets, nil
}
