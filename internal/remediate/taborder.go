package remediate

import (
	"fmt"
	"strings"

	"bennypowers.dev/a11yaudit/internal/collections"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/visualorder"
)

var (
	// NonInteractiveTags never need tabindex="0" on their own
	NonInteractiveTags = collections.NewSet("div", "span", "p", "img", "section", "article")
	// InteractiveRoles make an element a widget regardless of its tag
	InteractiveRoles = collections.NewSet(
		"button", "link", "menuitem", "tab", "option",
		"checkbox", "radio", "textbox", "searchbox", "switch",
	)
	// EventAttributes suggest scripted interactivity
	EventAttributes = collections.NewSet(
		"onclick", "onkeydown", "onkeyup", "onkeypress",
		"onmousedown", "onmouseup", "onmouseover",
	)
)

// HasInteractiveRole reports whether id carries a widget role
func HasInteractiveRole(doc *dom.Document, id dom.NodeID) bool {
	role, _ := doc.Attr(id, "role")
	return InteractiveRoles.Has(strings.ToLower(strings.TrimSpace(role)))
}

// HasEventHandler reports whether id carries an inline event handler
func HasEventHandler(doc *dom.Document, id dom.NodeID) bool {
	node := doc.Node(id)
	if node == nil {
		return false
	}
	keys := make([]string, 0, len(node.Attrs))
	for _, a := range node.Attrs {
		keys = append(keys, a.Key)
	}
	return EventAttributes.HasAny(keys...)
}

// IsPositiveTabindex reports a well-formed tabindex above zero
func IsPositiveTabindex(doc *dom.Document, id dom.NodeID) bool {
	n, ok := visualorder.TabIndex(doc, id)
	return ok && n > 0
}

// IsUnnecessaryTabindexZero reports tabindex="0" on a non-interactive
// element without a widget role or event handler
func IsUnnecessaryTabindexZero(doc *dom.Document, id dom.NodeID) bool {
	n, ok := visualorder.TabIndex(doc, id)
	if !ok || n != 0 {
		return false
	}
	return NonInteractiveTags.Has(doc.Tag(id)) &&
		!HasInteractiveRole(doc, id) &&
		!HasEventHandler(doc, id)
}

// Step is a state of the tab-order remediation machine
type Step int

const (
	Detect Step = iota
	StripPositive
	StripZero
	Reorder
	PatchSkipTargets
	Done
)

func (s Step) String() string {
	switch s {
	case Detect:
		return "detect"
	case StripPositive:
		return "strip-positive-tabindex"
	case StripZero:
		return "strip-unneeded-zero"
	case Reorder:
		return "reorder"
	case PatchSkipTargets:
		return "patch-skip-targets"
	case Done:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Options tune the tab-order pass
type Options struct {
	// ReorderDOM enables the reorder step
	ReorderDOM bool
	// Threshold is the row grouping tolerance; zero means the default
	Threshold float64
}

// DefaultOptions returns reorder enabled at the default threshold
func DefaultOptions() Options {
	return Options{ReorderDOM: true, Threshold: visualorder.DefaultThreshold}
}

// TabOrder remediates focus order in place. It is single-use and not safe
// for concurrent use.
type TabOrder struct {
	doc      *dom.Document
	opts     Options
	step     Step
	analysis visualorder.Analysis
	log      Log
}

// NewTabOrder prepares a pass over doc
func NewTabOrder(doc *dom.Document, opts Options) *TabOrder {
	if opts.Threshold <= 0 {
		opts.Threshold = visualorder.DefaultThreshold
	}
	return &TabOrder{doc: doc, opts: opts}
}

// Step returns the next step to run
func (t *TabOrder) Step() Step {
	return t.step
}

// Advance runs the current step and moves to the next one. It reports
// false once the machine is done.
func (t *TabOrder) Advance() bool {
	switch t.step {
	case Detect:
		t.analysis = visualorder.Analyze(t.doc, t.opts.Threshold)
		log.Debug("Tab order: %d interactive, %d positioned, %d mismatches",
			len(t.analysis.Interactive), len(t.analysis.Positioned), len(t.analysis.Mismatches))
	case StripPositive:
		t.stripPositive()
	case StripZero:
		t.stripZero()
	case Reorder:
		if t.opts.ReorderDOM && len(t.analysis.Mismatches) > 0 {
			t.reorder()
		}
	case PatchSkipTargets:
		t.patchSkipTargets()
	case Done:
		return false
	}
	t.step++
	return t.step != Done
}

// Run drives the machine to completion and returns the change log
func (t *TabOrder) Run() []Change {
	for t.Advance() {
	}
	log.Info("Tab order remediation made %d changes", t.log.Len())
	return t.log.Changes()
}

// Changes returns the changes recorded so far
func (t *TabOrder) Changes() []Change {
	return t.log.Changes()
}

func (t *TabOrder) stripPositive() {
	for _, id := range t.doc.Elements() {
		if !IsPositiveTabindex(t.doc, id) {
			continue
		}
		old, _ := t.doc.RemoveAttr(id, "tabindex")
		t.log.Append(Change{
			Type:        PositiveTabindexRemoved,
			Element:     t.doc.Identifier(id),
			ElementType: t.doc.Tag(id),
			OldValue:    old,
			Reason:      "Positive tabindex disrupts natural tab order",
		})
	}
}

func (t *TabOrder) stripZero() {
	for _, id := range t.doc.Elements() {
		if !IsUnnecessaryTabindexZero(t.doc, id) {
			continue
		}
		old, _ := t.doc.RemoveAttr(id, "tabindex")
		t.log.Append(Change{
			Type:        ZeroTabindexRemoved,
			Element:     t.doc.Identifier(id),
			ElementType: t.doc.Tag(id),
			OldValue:    old,
			Reason:      "Non-interactive element does not need tabindex",
		})
	}
}

// reorder groups the visual order by DOM parent and rewrites each parent's
// children so the group follows visual order. Elements never change parent.
func (t *TabOrder) reorder() {
	var parents []dom.NodeID
	groups := map[dom.NodeID][]dom.NodeID{}
	for _, el := range t.analysis.Visual {
		p := t.doc.Parent(el.Element)
		if p == dom.NoNode {
			continue
		}
		if _, ok := groups[p]; !ok {
			parents = append(parents, p)
		}
		groups[p] = append(groups[p], el.Element)
	}

	for _, p := range parents {
		members := groups[p]
		if len(members) < 2 {
			continue
		}
		if !reorderChildren(t.doc, p, members) {
			continue
		}
		ids := make([]string, len(members))
		for i, m := range members {
			ids[i] = t.doc.Identifier(m)
		}
		t.log.Append(Change{
			Type:     DOMReordered,
			Parent:   t.doc.Identifier(p),
			Elements: ids,
			Reason:   "Reordered to match visual reading order",
		})
	}
}

// reorderChildren extracts members from parent and reinserts them, in the
// given order, where the earliest of them stood. It reports whether the
// child order changed.
func reorderChildren(doc *dom.Document, parent dom.NodeID, members []dom.NodeID) bool {
	at := -1
	current := make([]dom.NodeID, 0, len(members))
	for _, c := range doc.Children(parent) {
		for _, m := range members {
			if c == m {
				if at < 0 {
					at = doc.IndexInParent(c)
				}
				current = append(current, c)
			}
		}
	}
	if at < 0 || len(current) != len(members) || sameOrder(current, members) {
		return false
	}

	for _, m := range members {
		doc.Detach(m)
	}
	for i, m := range members {
		if err := doc.InsertAt(parent, at+i, m); err != nil {
			log.Error("Reinserting %s: %v", doc.Identifier(m), err)
		}
	}
	return true
}

func sameOrder(a, b []dom.NodeID) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SkipLinks returns in-page links whose text mentions skipping
func SkipLinks(doc *dom.Document) []dom.NodeID {
	var out []dom.NodeID
	for _, id := range doc.ElementsByTag("a") {
		href, _ := doc.Attr(id, "href")
		if len(href) > 1 && strings.HasPrefix(href, "#") &&
			strings.Contains(strings.ToLower(doc.Text(id)), "skip") {
			out = append(out, id)
		}
	}
	return out
}

// patchSkipTargets makes each skip-link target programmatically focusable.
// Targets that already carry a tabindex are left alone, so reruns add
// nothing.
func (t *TabOrder) patchSkipTargets() {
	for _, link := range SkipLinks(t.doc) {
		href, _ := t.doc.Attr(link, "href")
		target, ok := t.doc.ElementByID(href[1:])
		if !ok {
			t.log.Append(Change{
				Type:    NegativeTabindexAdded,
				Element: href,
				Reason:  "Skip link target not found",
				Skipped: true,
			})
			continue
		}
		if t.doc.HasAttr(target, "tabindex") {
			continue
		}
		t.doc.SetAttr(target, "tabindex", "-1")
		t.log.Append(Change{
			Type:        NegativeTabindexAdded,
			Element:     t.doc.Identifier(target),
			ElementType: t.doc.Tag(target),
			NewValue:    "-1",
			Reason:      "Skip link target needs tabindex=\"-1\"",
		})
	}
}
