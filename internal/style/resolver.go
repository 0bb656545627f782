// Package style resolves the effective presentation of elements through a
// simplified CSS cascade: inline declarations, then authored rules by
// specificity and source order, then inheritance of color, then defaults.
package style

import (
	"sort"

	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/parser/css"
)

// Rule is an authored rule with its cascade position
type Rule struct {
	Selector    string
	Properties  map[string]string
	Specificity Specificity
	// Order is the position of the rule among all rules of the document
	Order int

	matcher matcher
}

// inherited lists the properties that fall back to the parent element
var inherited = map[string]bool{
	"color": true,
}

var defaults = map[string]string{
	"color":            string(color.Black),
	"background-color": string(color.Transparent),
	"font-size":        "16px",
	"font-weight":      "normal",
}

// Resolver answers computed-style queries for one document. It is not safe
// for concurrent use.
type Resolver struct {
	doc    *dom.Document
	colors color.Parser
	rules  []Rule

	selectors map[string]matcher
	queries   map[string]map[dom.NodeID]bool
	m         *dom.Mirror
}

// Option configures a Resolver
type Option func(*resolverOptions)

type resolverOptions struct {
	sheets []string
	colors color.Parser
}

// WithStylesheets adds external stylesheet text. External sheets precede
// the document's own <style> blocks in cascade order.
func WithStylesheets(texts ...string) Option {
	return func(o *resolverOptions) {
		o.sheets = append(o.sheets, texts...)
	}
}

// WithColorParser sets the parser used to normalize resolved colors
func WithColorParser(p color.Parser) Option {
	return func(o *resolverOptions) {
		o.colors = p
	}
}

// New builds a resolver from the document's <style> elements and any
// external stylesheet text.
func New(doc *dom.Document, opts ...Option) *Resolver {
	var o resolverOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := &Resolver{
		doc:       doc,
		colors:    o.colors,
		selectors: make(map[string]matcher),
		queries:   make(map[string]map[dom.NodeID]bool),
	}

	sheets := append([]string{}, o.sheets...)
	for _, el := range doc.ElementsByTag("style") {
		sheets = append(sheets, doc.Text(el))
	}

	p := css.AcquireParser()
	defer css.ReleaseParser(p)
	for i, sheet := range sheets {
		rules, err := p.ParseStylesheet(sheet)
		if err != nil {
			log.Warn("Skipping stylesheet %d: %v", i, err)
			continue
		}
		for _, cr := range rules {
			r.add(cr)
		}
	}

	// Stable by specificity, so equal specificities stay in source order
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].Specificity.Compare(r.rules[j].Specificity) < 0
	})
	log.Debug("Resolver built with %d rules from %d stylesheets", len(r.rules), len(sheets))
	return r
}

func (r *Resolver) add(cr css.Rule) {
	r.rules = append(r.rules, Rule{
		Selector:    cr.Selector,
		Properties:  cr.Properties(),
		Specificity: SpecificityOf(cr.Selector),
		Order:       len(r.rules),
		matcher:     r.compile(cr.Selector),
	})
}

func (r *Resolver) compile(selector string) matcher {
	if m, ok := r.selectors[selector]; ok {
		return m
	}
	m := compileSelector(selector)
	r.selectors[selector] = m
	return m
}

// Rules returns the rules in ascending cascade order
func (r *Resolver) Rules() []Rule {
	return r.rules
}

// Document returns the document the resolver reads
func (r *Resolver) Document() *dom.Document {
	return r.doc
}

// Invalidate drops cached query results. Call it after mutating the
// document structure if the resolver will be used again.
func (r *Resolver) Invalidate() {
	r.m = nil
	clear(r.queries)
}

func (r *Resolver) mirror() *dom.Mirror {
	if r.m == nil {
		r.m = r.doc.Mirror()
	}
	return r.m
}

// Matches reports whether element id matches selector. Selectors the
// engine cannot compile never match.
func (r *Resolver) Matches(id dom.NodeID, selector string) bool {
	if !r.doc.IsElement(id) {
		return false
	}
	return r.compile(selector).match(r, id)
}

// Inline returns the declarations of the element's style attribute
func (r *Resolver) Inline(id dom.NodeID) map[string]string {
	v, ok := r.doc.Attr(id, "style")
	if !ok {
		return map[string]string{}
	}
	return css.Fold(css.ParseDeclarations(v))
}

// Declared returns the value the element itself specifies for property,
// from its style attribute or the winning matching rule.
func (r *Resolver) Declared(id dom.NodeID, property string) (string, bool) {
	if v, ok := r.Inline(id)[property]; ok {
		return v, true
	}
	for i := len(r.rules) - 1; i >= 0; i-- {
		rule := &r.rules[i]
		v, ok := rule.Properties[property]
		if !ok {
			continue
		}
		if rule.matcher.match(r, id) {
			return v, true
		}
	}
	return "", false
}

// ComputedStyle returns the value of property for element id. Unknown
// properties with no declaration resolve to "".
func (r *Resolver) ComputedStyle(id dom.NodeID, property string) string {
	for cur := id; cur != dom.NoNode; cur = r.doc.ParentElement(cur) {
		if v, ok := r.Declared(cur, property); ok {
			return v
		}
		if !inherited[property] {
			break
		}
	}
	return defaults[property]
}

// TextColor returns the normalized foreground color of id. ok is false
// when the color could not be determined.
func (r *Resolver) TextColor(id dom.NodeID) (color.Resolved, bool) {
	return r.colors.Normalize(r.ComputedStyle(id, "color"))
}

// BackgroundColor returns the color showing behind id: the first
// non-transparent background on id or its ancestors, white at the root.
// An unparseable background stops the walk and is reported as undetermined.
func (r *Resolver) BackgroundColor(id dom.NodeID) (color.Resolved, bool) {
	for cur := id; cur != dom.NoNode; cur = r.doc.ParentElement(cur) {
		c, ok := r.colors.Normalize(r.ComputedStyle(cur, "background-color"))
		if !ok {
			return "", false
		}
		if !c.IsTransparent() {
			return c, true
		}
	}
	return color.White, true
}

// ParentBackground is the background behind id's parent, the adjacent
// color for non-text contrast.
func (r *Resolver) ParentBackground(id dom.NodeID) (color.Resolved, bool) {
	parent := r.doc.ParentElement(id)
	if parent == dom.NoNode {
		return color.White, true
	}
	return r.BackgroundColor(parent)
}

// FontSize returns the computed font-size text
func (r *Resolver) FontSize(id dom.NodeID) string {
	return r.ComputedStyle(id, "font-size")
}

// FontWeight returns the computed font-weight; b and strong are bold
// unless they declare otherwise.
func (r *Resolver) FontWeight(id dom.NodeID) string {
	if v, ok := r.Declared(id, "font-weight"); ok {
		return v
	}
	switch r.doc.Tag(id) {
	case "b", "strong":
		return "bold"
	}
	return defaults["font-weight"]
}

// Color normalizes raw with the resolver's color parser
func (r *Resolver) Color(raw string) (color.Resolved, bool) {
	return r.colors.Normalize(raw)
}
