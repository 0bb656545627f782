// Package checks holds the rule modules. Each check reads a document
// through a style resolver and reports issues to a sink; none of them
// mutate the document.
package checks

import (
	"fmt"
	"strings"

	"bennypowers.dev/a11yaudit/internal/collections"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/issues"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/style"
	"bennypowers.dev/a11yaudit/internal/visualorder"
)

// Context is what a check needs to run over one document
type Context struct {
	Doc      *dom.Document
	Resolver *style.Resolver
	// Level is AA or AAA; AA always runs
	Level contrast.Level
	// Threshold is the row grouping tolerance for visual order
	Threshold float64
	Sink      issues.Sink
}

// NewContext builds a context with the default level and threshold
func NewContext(doc *dom.Document, r *style.Resolver, sink issues.Sink) *Context {
	return &Context{
		Doc:       doc,
		Resolver:  r,
		Level:     contrast.AA,
		Threshold: visualorder.DefaultThreshold,
		Sink:      sink,
	}
}

func (c *Context) report(id dom.NodeID, typ, criterion string, sev issues.Severity, location map[string]any, format string, args ...any) {
	is := issues.New(c.Doc, id, typ, criterion, sev, fmt.Sprintf(format, args...))
	is.Location = location
	c.Sink(is)
}

// Check is a rule module
type Check interface {
	Name() string
	Run(ctx *Context)
}

// All returns every check in reporting order
func All() []Check {
	return []Check{
		ColorContrast{},
		NonTextContrast{},
		ColorUsage{},
		TabOrder{},
	}
}

// Names lists the names of all checks
func Names() []string {
	var names []string
	for _, c := range All() {
		names = append(names, c.Name())
	}
	return names
}

// Select returns the checks with the given names; an empty list selects all
func Select(names []string) ([]Check, error) {
	if len(names) == 0 {
		return All(), nil
	}
	byName := map[string]Check{}
	for _, c := range All() {
		byName[c.Name()] = c
	}
	var out []Check
	for _, n := range names {
		c, ok := byName[strings.TrimSpace(n)]
		if !ok {
			available := collections.Sorted(collections.NewSet(Names()...))
			return nil, fmt.Errorf("unknown check %q (available: %s)", n, strings.Join(available, ", "))
		}
		out = append(out, c)
	}
	return out, nil
}

// Run runs checks in order
func Run(ctx *Context, checks ...Check) {
	for _, c := range checks {
		log.Debug("Running check %s", c.Name())
		c.Run(ctx)
	}
}

// hasDescendant reports whether any element below id has one of tags
func hasDescendant(doc *dom.Document, id dom.NodeID, tags ...string) bool {
	want := collections.NewSet(tags...)
	found := false
	for _, c := range doc.Children(id) {
		doc.Walk(c, func(n dom.NodeID) bool {
			if want.Has(doc.Tag(n)) {
				found = true
			}
			return !found
		})
	}
	return found
}
