package contrast

import (
	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/style"
)

// Status says how far an evaluation got
type Status int

const (
	// Skipped means colors were undetermined and the element carries no
	// author styling worth flagging
	Skipped Status = iota
	// Potential means colors were undetermined on a styled element
	Potential
	// Measured means both colors resolved and results are filled in
	Measured
)

// Evaluation is the text contrast outcome for one element
type Evaluation struct {
	Element    dom.NodeID
	Status     Status
	Foreground color.Resolved
	Background color.Resolved
	LargeText  bool
	AA         Result
	// AAA is set when the evaluator runs the enhanced level
	AAA *Result
}

// Evaluator measures elements against a style resolver
type Evaluator struct {
	resolver *style.Resolver
	enhanced bool
}

// NewEvaluator returns an evaluator; level AAA also runs 1.4.6
func NewEvaluator(r *style.Resolver, level Level) *Evaluator {
	return &Evaluator{resolver: r, enhanced: level == AAA}
}

// Evaluate measures the text contrast of id
func (e *Evaluator) Evaluate(id dom.NodeID) Evaluation {
	r := e.resolver
	doc := r.Document()
	ev := Evaluation{Element: id}

	fg, fgOK := r.TextColor(id)
	bg, bgOK := r.BackgroundColor(id)
	ev.Foreground, ev.Background = fg, bg
	if !fgOK || !bgOK || fg.IsTransparent() || bg.IsTransparent() {
		if doc.HasAttr(id, "style") || doc.HasAttr(id, "class") {
			ev.Status = Potential
		}
		return ev
	}

	tag := doc.Tag(id)
	ev.LargeText = IsLargeText(tag, r.FontSize(id), r.FontWeight(id))
	ev.Status = Measured
	ev.AA = Compare(fg, bg, ev.LargeText, AA)
	if e.enhanced {
		aaa := Compare(fg, bg, ev.LargeText, AAA)
		ev.AAA = &aaa
	}
	return ev
}

// NonTextProperties are the properties compared against the adjacent color
var NonTextProperties = []string{"border-color", "outline-color", "fill", "stroke"}

// NonTextResult is one measured non-text property
type NonTextResult struct {
	Result
	Property string
	// Adjacent is the background surrounding the element
	Adjacent color.Resolved
}

// EvaluateNonText compares each declared non-text color of id against the
// adjacent color. Undetermined colors are left out.
func (e *Evaluator) EvaluateNonText(id dom.NodeID) []NonTextResult {
	r := e.resolver
	adjacent, ok := r.ParentBackground(id)
	if !ok {
		return nil
	}

	var out []NonTextResult
	for _, prop := range NonTextProperties {
		raw, ok := NonTextColor(r, id, prop)
		if !ok {
			continue
		}
		c, ok := r.Color(raw)
		if !ok || c.IsTransparent() {
			continue
		}
		out = append(out, NonTextResult{
			Result:   Compare(c, adjacent, false, NonText),
			Property: prop,
			Adjacent: adjacent,
		})
	}
	return out
}

// NonTextColor returns the declared value of prop, falling back to the SVG
// presentation attribute of the same name.
func NonTextColor(r *style.Resolver, id dom.NodeID, prop string) (string, bool) {
	if v, ok := r.Declared(id, prop); ok {
		return v, true
	}
	switch prop {
	case "fill", "stroke":
		return r.Document().Attr(id, prop)
	}
	return "", false
}
