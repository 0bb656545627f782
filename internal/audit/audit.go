// Package audit runs the checks, and optionally remediation, over HTML
// documents. One style resolver is built per document; documents are
// independent and may be processed in parallel.
package audit

import (
	"context"
	"fmt"
	"time"

	"bennypowers.dev/a11yaudit/internal/checks"
	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/config"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/issues"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/parser"
	"bennypowers.dev/a11yaudit/internal/parser/html"
	"bennypowers.dev/a11yaudit/internal/remediate"
	"bennypowers.dev/a11yaudit/internal/style"
	"bennypowers.dev/a11yaudit/internal/visualorder"
	"golang.org/x/sync/errgroup"
)

const colorOnlyIssue = "color-only-indication"

// Options control one run
type Options struct {
	Level     contrast.Level
	Threshold float64
	// Stylesheets is CSS text applied before each document's own <style>
	// elements
	Stylesheets    []string
	ExtendedColors bool
	Checks         []checks.Check

	// Remediate runs the contrast and color-only fixes, then the tab-order
	// machine
	Remediate  bool
	ReorderDOM bool
	// Patches are external suggestions applied after remediation
	Patches []remediate.Patch
	// MinSeverity drops reported issues below it; empty keeps all
	MinSeverity issues.Severity
}

// DefaultOptions audits at AA with every check and no remediation
func DefaultOptions() Options {
	return Options{
		Level:      contrast.AA,
		Threshold:  visualorder.DefaultThreshold,
		Checks:     checks.All(),
		ReorderDOM: true,
	}
}

// OptionsFromConfig builds options from cfg; stylesheet globs are resolved
// against baseDir and read
func OptionsFromConfig(cfg *config.Config, baseDir string) (Options, error) {
	selected, err := checks.Select(cfg.Checks)
	if err != nil {
		return Options{}, err
	}
	paths, err := cfg.ResolveStylesheets(baseDir)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Level:          cfg.Level(),
		Threshold:      cfg.RowGroupingThreshold,
		Stylesheets:    parser.ReadStylesheets(paths),
		ExtendedColors: cfg.ExtendedColors,
		Checks:         selected,
		ReorderDOM:     cfg.ReorderDOMForVisualOrder,
	}, nil
}

// Result is the outcome for one document
type Result struct {
	Path    string             `json:"path,omitempty"`
	Issues  []issues.Issue     `json:"issues"`
	Summary issues.Summary     `json:"summary"`
	Changes []remediate.Change `json:"changes,omitempty"`
	// Error is set when the document could not be read or parsed
	Error string `json:"error,omitempty"`

	// Document is the (possibly remediated) document
	Document *dom.Document `json:"-"`
	Duration time.Duration `json:"-"`
}

// HTML renders the result's document
func (r Result) HTML() string {
	if r.Document == nil {
		return ""
	}
	return r.Document.String()
}

func (o Options) resolver(doc *dom.Document) *style.Resolver {
	return style.New(doc,
		style.WithStylesheets(o.Stylesheets...),
		style.WithColorParser(color.Parser{Extended: o.ExtendedColors}),
	)
}

// Document audits doc in place. With Remediate set, doc is mutated and
// the changes are returned in the result.
func Document(doc *dom.Document, opts Options) Result {
	start := time.Now()
	r := opts.resolver(doc)

	var found issues.Collector
	ctx := checks.NewContext(doc, r, found.Sink())
	ctx.Level = opts.Level
	if opts.Threshold > 0 {
		ctx.Threshold = opts.Threshold
	}
	if opts.Checks == nil {
		opts.Checks = checks.All()
	}
	checks.Run(ctx, opts.Checks...)

	res := Result{Issues: found.Issues(), Document: doc}
	if opts.Remediate {
		res.Changes = remediateDocument(r, res.Issues, opts)
	}
	if len(opts.Patches) > 0 {
		res.Changes = append(res.Changes, remediate.ApplyPatches(doc, opts.Patches)...)
	}
	if opts.MinSeverity != "" {
		res.Issues = issues.Filter(res.Issues, opts.MinSeverity)
	}
	res.Summary = issues.Summarize(res.Issues)
	res.Duration = time.Since(start)
	return res
}

// remediateDocument repairs contrast and color-only indication on the
// elements the checks flagged, then runs the tab-order machine
func remediateDocument(r *style.Resolver, found []issues.Issue, opts Options) []remediate.Change {
	type fix struct {
		id   dom.NodeID
		kind string
	}
	var changes remediate.Log
	fixed := map[fix]bool{}
	apply := func(cs ...remediate.Change) {
		for _, c := range cs {
			changes.Append(c)
		}
		if len(cs) > 0 {
			r.Invalidate()
		}
	}

	for _, is := range found {
		if is.Element == dom.NoNode {
			continue
		}
		key := fix{is.Element, is.Type}
		switch is.Type {
		case "insufficient-color-contrast", "insufficient-color-contrast-aaa":
			key.kind = "text-contrast"
		case colorOnlyIssue:
			pattern, _ := is.Location["pattern"].(string)
			key.kind = pattern
		}
		if fixed[key] {
			continue
		}
		fixed[key] = true

		switch is.Type {
		case "insufficient-color-contrast", "insufficient-color-contrast-aaa":
			if c, ok := remediate.FixTextContrast(r, is.Element, opts.Level); ok {
				apply(c)
			}
		case "insufficient-ui-component-contrast", "insufficient-icon-contrast":
			apply(remediate.FixNonTextContrast(r, is.Element)...)
		case colorOnlyIssue:
			apply(remediate.FixColorOnly(r, is.Element, key.kind)...)
		}
	}

	tab := remediate.NewTabOrder(r.Document(), remediate.Options{
		ReorderDOM: opts.ReorderDOM,
		Threshold:  opts.Threshold,
	})
	apply(tab.Run()...)
	return changes.Changes()
}

// Source parses and audits HTML source
func Source(src []byte, opts Options) (Result, error) {
	doc, err := html.Parse(src)
	if err != nil {
		return Result{}, err
	}
	return Document(doc, opts), nil
}

// File parses and audits the document at path
func File(path string, opts Options) (Result, error) {
	doc, err := parser.ParseFile(path)
	if err != nil {
		return Result{Path: path, Error: err.Error()}, err
	}
	res := Document(doc, opts)
	res.Path = path
	log.Info("Audited %s: %d issues, %d changes in %s", path, len(res.Issues), len(res.Changes), res.Duration)
	return res, nil
}

// Files audits paths with at most workers documents in flight. Results
// keep the order of paths. A document that fails to load is reported in
// its result and does not stop the others; only cancellation of ctx
// aborts the run.
func Files(ctx context.Context, paths []string, opts Options, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := File(path, opts)
			if err != nil {
				log.Error("%v", err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, fmt.Errorf("audit cancelled: %w", err)
	}
	return results, nil
}

// Failed counts results whose document could not be audited
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Error != "" {
			n++
		}
	}
	return n
}
