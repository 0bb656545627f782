package checks

import (
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/issues"
	"bennypowers.dev/a11yaudit/internal/remediate"
	"bennypowers.dev/a11yaudit/internal/visualorder"
)

// maxReportedMismatches bounds the mismatch list carried in an issue
const maxReportedMismatches = 5

// TabOrder reports focus order problems (2.4.3)
type TabOrder struct{}

func (TabOrder) Name() string { return "tab-order" }

func (TabOrder) Run(ctx *Context) {
	doc := ctx.Doc
	for _, id := range doc.Elements() {
		switch {
		case remediate.IsPositiveTabindex(doc, id):
			v, _ := doc.Attr(id, "tabindex")
			ctx.report(id, "positive-tabindex", "2.4.3", issues.Critical, map[string]any{"tabindex": v},
				"Element has positive tabindex=%s which disrupts natural tab order", v)
		case remediate.IsUnnecessaryTabindexZero(doc, id):
			ctx.report(id, "unnecessary-tabindex-zero", "2.4.3", issues.Minor, map[string]any{"tabindex": "0"},
				"Non-interactive element has tabindex=0 but no interactive role or event handler")
		}
	}

	a := visualorder.Analyze(doc, ctx.Threshold)
	if len(a.Mismatches) == 0 {
		return
	}
	shown := a.Mismatches
	if len(shown) > maxReportedMismatches {
		shown = shown[:maxReportedMismatches]
	}
	pairs := make([]map[string]any, 0, len(shown))
	for _, m := range shown {
		pairs = append(pairs, map[string]any{
			"current_element": placement(doc, m.Current),
			"next_element":    placement(doc, m.Next),
		})
	}
	ctx.report(dom.NoNode, "tab-order-mismatch", "2.4.3", issues.Major, map[string]any{
		"mismatches_count":           len(a.Mismatches),
		"mismatches":                 pairs,
		"total_interactive_elements": len(a.Interactive),
	}, "Tab order does not match visual layout: %d element pair(s) are out of order", len(a.Mismatches))
}

func placement(doc *dom.Document, p visualorder.Placement) map[string]any {
	return map[string]any{
		"element":      doc.Identifier(p.Element),
		"dom_index":    p.DOMIndex,
		"visual_index": p.VisualIndex,
	}
}
