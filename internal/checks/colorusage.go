package checks

import (
	"strings"

	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/issues"
)

const colorOnly = "color-only-indication"

var (
	errorClasses  = []string{"error", "invalid", "danger", "alert-error", "is-invalid"}
	errorWords    = []string{"error", "invalid", "required", "must"}
	statusClasses = []string{"badge", "status", "label", "tag", "chip", "pill"}
	statusWords   = []string{"success", "error", "warning", "info", "complete", "pending", "failed", "active", "inactive"}
)

// ColorUsage reports information conveyed by color alone (1.4.1)
type ColorUsage struct{}

func (ColorUsage) Name() string { return "color-usage" }

func (ColorUsage) Run(ctx *Context) {
	requiredIndicators(ctx)
	linkIndicators(ctx)
	validationErrors(ctx)
	statusBadges(ctx)
}

// IsErrorColor reports a red-dominant color
func IsErrorColor(c color.Resolved) bool {
	r, g, b, ok := c.RGB()
	return ok && r > 150 && r > g && r > b
}

// IsStatusColor reports a green, yellow, red or blue dominant color
func IsStatusColor(c color.Resolved) bool {
	r, g, b, ok := c.RGB()
	if !ok {
		return false
	}
	green := g > 150 && g > r && g > b
	yellow := r > 150 && g > 150 && b < 100
	red := r > 150 && r > g && r > b
	blue := b > 150 && b > r && b > g
	return green || yellow || red || blue
}

// classMatches reports whether any class of id contains one of names,
// case-insensitively
func classMatches(doc *dom.Document, id dom.NodeID, names []string) bool {
	for _, c := range doc.Classes(id) {
		c = strings.ToLower(c)
		for _, n := range names {
			if strings.Contains(c, n) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	s = strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasARIADescription(doc *dom.Document, id dom.NodeID) bool {
	return doc.HasAttr(id, "aria-label") || doc.HasAttr(id, "aria-describedby")
}

func requiredIndicators(ctx *Context) {
	doc := ctx.Doc
	for _, input := range doc.ElementsByTag("input", "select", "textarea") {
		if doc.HasAttr(input, "required") {
			continue
		}
		if v, _ := doc.Attr(input, "aria-required"); v == "true" {
			continue
		}
		nearby := nearbyText(doc, input)
		if !strings.Contains(nearby, "*") && !strings.Contains(strings.ToLower(nearby), "required") {
			continue
		}
		marker := asteriskElement(doc, input)
		if marker == dom.NoNode || !reliesOnColor(ctx, marker) {
			continue
		}
		ctx.report(input, colorOnly, "1.4.1", issues.Major, map[string]any{
			"pattern":   "required_field_indicator",
			"indicator": "asterisk_or_color",
		}, "Required field indicator relies on color alone. Add 'required' attribute or visible text label.")
	}
}

// nearbyText gathers the associated label, an enclosing label and up to
// three preceding siblings
func nearbyText(doc *dom.Document, input dom.NodeID) string {
	var parts []string
	if l := doc.LabelFor(input); l != dom.NoNode {
		parts = append(parts, doc.Text(l))
	}
	if l := doc.Closest(input, func(n dom.NodeID) bool { return doc.Tag(n) == "label" }); l != dom.NoNode {
		parts = append(parts, doc.Text(l))
	}
	siblings := doc.Children(doc.Parent(input))
	for i, n := doc.IndexInParent(input)-1, 0; i >= 0 && n < 3; i, n = i-1, n+1 {
		parts = append(parts, doc.Text(siblings[i]))
	}
	return strings.Join(parts, " ")
}

// asteriskElement finds a span holding "*" in the input's label or parent
func asteriskElement(doc *dom.Document, input dom.NodeID) dom.NodeID {
	scopes := []dom.NodeID{doc.LabelFor(input), doc.ParentElement(input)}
	for _, scope := range scopes {
		if scope == dom.NoNode {
			continue
		}
		found := dom.NoNode
		doc.Walk(scope, func(n dom.NodeID) bool {
			if found != dom.NoNode {
				return false
			}
			if doc.Tag(n) == "span" && strings.Contains(doc.Text(n), "*") {
				found = n
				return false
			}
			return true
		})
		if found != dom.NoNode {
			return found
		}
	}
	return dom.NoNode
}

// reliesOnColor reports a red marker that is neither bold nor described
func reliesOnColor(ctx *Context, id dom.NodeID) bool {
	c, ok := ctx.Resolver.TextColor(id)
	if !ok || !IsErrorColor(c) {
		return false
	}
	bold := contrast.IsBold(ctx.Resolver.FontWeight(id), ctx.Doc.Tag(id))
	return !bold && !hasARIADescription(ctx.Doc, id)
}

func linkIndicators(ctx *Context) {
	doc, r := ctx.Doc, ctx.Resolver
	for _, link := range doc.ElementsByTag("a") {
		if !doc.HasAttr(link, "href") || hasDescendant(doc, link, "img") {
			continue
		}
		if strings.TrimSpace(doc.Text(link)) == "" {
			continue
		}
		parent := doc.ParentElement(link)
		if parent == dom.NoNode || doc.Tag(parent) == "a" {
			continue
		}
		if hasUnderline(ctx, link) || hasDescendant(doc, link, "i", "svg") || differentWeight(ctx, link, parent) {
			continue
		}
		linkColor, ok1 := r.TextColor(link)
		parentColor, ok2 := r.TextColor(parent)
		if !ok1 || !ok2 || linkColor == parentColor {
			continue
		}
		ctx.report(link, colorOnly, "1.4.1", issues.Major, map[string]any{
			"pattern":      "link_without_underline",
			"link_color":   linkColor.String(),
			"parent_color": parentColor.String(),
		}, "Link is distinguished from text only by color. Add underline or other non-color indicator.")
	}
}

// hasUnderline treats an undeclared text-decoration as the user agent's
// default underline for links
func hasUnderline(ctx *Context, link dom.NodeID) bool {
	for _, prop := range []string{"text-decoration", "text-decoration-line"} {
		if v, ok := ctx.Resolver.Declared(link, prop); ok {
			return strings.Contains(strings.ToLower(v), "underline")
		}
	}
	return true
}

func differentWeight(ctx *Context, el, parent dom.NodeID) bool {
	switch ctx.Doc.Tag(parent) {
	case "html", "body":
		return false
	}
	return ctx.Resolver.FontWeight(el) != ctx.Resolver.FontWeight(parent)
}

func validationErrors(ctx *Context) {
	doc, r := ctx.Doc, ctx.Resolver
	for _, id := range doc.Elements() {
		role, _ := doc.Attr(id, "role")
		if !classMatches(doc, id, errorClasses) && role != "alert" {
			continue
		}
		if role == "alert" || hasDescendant(doc, id, "i", "svg") || hasARIADescription(doc, id) {
			continue
		}
		if containsAny(doc.Text(id), errorWords) {
			continue
		}

		textColor, textOK := r.TextColor(id)
		var shown color.Resolved
		switch {
		case textOK && IsErrorColor(textColor):
			shown = textColor
		default:
			if v, ok := r.Declared(id, "border-color"); ok {
				if c, ok := r.Color(v); ok && IsErrorColor(c) {
					shown = c
				}
			}
		}
		if shown == "" {
			continue
		}
		ctx.report(id, colorOnly, "1.4.1", issues.Major, map[string]any{
			"pattern":     "form_validation_error",
			"error_color": shown.String(),
		}, "Form validation error indicated by color alone. Add icon, text label, or ARIA attributes.")
	}
}

func statusBadges(ctx *Context) {
	doc, r := ctx.Doc, ctx.Resolver
	for _, id := range doc.Elements() {
		if !classMatches(doc, id, statusClasses) {
			continue
		}
		if hasDescendant(doc, id, "i", "svg") {
			continue
		}
		text := strings.TrimSpace(doc.Text(id))
		if len(text) > 2 && containsAny(text, statusWords) {
			continue
		}
		bg, ok := r.BackgroundColor(id)
		if !ok || !IsStatusColor(bg) {
			continue
		}
		ctx.report(id, colorOnly, "1.4.1", issues.Major, map[string]any{
			"pattern":          "status_badge",
			"background_color": bg.String(),
		}, "Status indicator relies on color alone. Add icon or explicit text label.")
	}
}
