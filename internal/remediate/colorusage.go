package remediate

import (
	"fmt"
	"strings"

	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/style"
)

// Color-only patterns as reported in an issue's location
const (
	RequiredFieldPattern   = "required_field_indicator"
	LinkUnderlinePattern   = "link_without_underline"
	ValidationErrorPattern = "form_validation_error"
	StatusBadgePattern     = "status_badge"
)

// Status is the meaning inferred from a badge color
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
	StatusUnknown Status = "unknown"
)

var statusLabels = map[Status]string{
	StatusSuccess: "Success",
	StatusError:   "Error",
	StatusWarning: "Warning",
	StatusInfo:    "Info",
	StatusUnknown: "Status",
}

var statusIcons = map[Status]string{
	StatusSuccess: "✓",
	StatusError:   "✗",
	StatusWarning: "⚠",
	StatusInfo:    "ℹ",
	StatusUnknown: "•",
}

// InferStatus classifies a badge background by its dominant channel
func InferStatus(c color.Resolved) Status {
	r, g, b, ok := c.RGB()
	switch {
	case !ok:
		return StatusUnknown
	case g > r && g > b && g > 100:
		return StatusSuccess
	case r > g && r > b && r > 100:
		return StatusError
	case r > 150 && g > 100 && b < 100:
		return StatusWarning
	case b > r && b > g && b > 100:
		return StatusInfo
	}
	return StatusUnknown
}

// FixColorOnly adds a non-color cue to an element flagged for conveying
// information by color alone. pattern selects the repair.
func FixColorOnly(r *style.Resolver, id dom.NodeID, pattern string) []Change {
	switch pattern {
	case RequiredFieldPattern:
		return FixRequiredField(r.Document(), id)
	case LinkUnderlinePattern:
		if c, ok := FixLinkUnderline(r, id); ok {
			return []Change{c}
		}
	case ValidationErrorPattern:
		return FixValidationError(r.Document(), id)
	case StatusBadgePattern:
		if c, ok := FixStatusBadge(r, id); ok {
			return []Change{c}
		}
	}
	return nil
}

// FixLinkUnderline underlines a link through its style attribute
func FixLinkUnderline(r *style.Resolver, id dom.NodeID) (Change, bool) {
	doc := r.Document()
	if doc.Tag(id) != "a" {
		return Change{}, false
	}
	old, _ := r.Declared(id, "text-decoration")
	if old == "" {
		old, _ = r.Declared(id, "text-decoration-line")
	}
	setInline(doc, id, "text-decoration", "underline")
	if _, ok := r.Declared(id, "text-decoration-line"); ok {
		setInline(doc, id, "text-decoration-line", "underline")
	}
	return Change{
		Type:        LinkUnderlineAdded,
		Element:     doc.Identifier(id),
		ElementType: "a",
		OldValue:    old,
		NewValue:    "underline",
		Reason:      "Link was distinguished from surrounding text by color alone",
	}, true
}

// FixRequiredField marks a form control required for assistive technology
// and adds visible "(required)" text to its label
func FixRequiredField(doc *dom.Document, id dom.NodeID) []Change {
	switch doc.Tag(id) {
	case "input", "select", "textarea":
	default:
		return nil
	}
	ident := doc.Identifier(id)
	var changes []Change
	if !doc.HasAttr(id, "required") || !doc.HasAttr(id, "aria-required") {
		if !doc.HasAttr(id, "required") {
			doc.SetAttr(id, "required", "")
		}
		if !doc.HasAttr(id, "aria-required") {
			doc.SetAttr(id, "aria-required", "true")
		}
		changes = append(changes, Change{
			Type:        RequiredAttributeAdded,
			Element:     ident,
			ElementType: doc.Tag(id),
			NewValue:    `required aria-required="true"`,
			Reason:      "Required state was shown by a colored marker only",
		})
	}

	label := doc.LabelFor(id)
	if label == dom.NoNode || strings.Contains(strings.ToLower(doc.Text(label)), "required") {
		return changes
	}
	if err := doc.AppendChild(label, doc.NewText(" (required)")); err != nil {
		return changes
	}
	return append(changes, Change{
		Type:        RequiredTextAdded,
		Element:     doc.Identifier(label),
		ElementType: "label",
		NewValue:    "(required)",
		Reason:      fmt.Sprintf("Label of %s gained visible required text", ident),
	})
}

// FixValidationError announces a validation message, prefixes it with
// "Error:" when its text does not say so, and adds a hidden icon
func FixValidationError(doc *dom.Document, id dom.NodeID) []Change {
	ident := doc.Identifier(id)
	var changes []Change

	var added []string
	if !doc.HasAttr(id, "role") {
		doc.SetAttr(id, "role", "alert")
		added = append(added, `role="alert"`)
	}
	if !doc.HasAttr(id, "aria-live") {
		doc.SetAttr(id, "aria-live", "polite")
		added = append(added, `aria-live="polite"`)
	}
	if len(added) > 0 {
		changes = append(changes, Change{
			Type:        ErrorAnnounced,
			Element:     ident,
			ElementType: doc.Tag(id),
			NewValue:    strings.Join(added, " "),
			Reason:      "Validation error was shown by color alone",
		})
	}

	text := strings.ToLower(strings.TrimSpace(doc.Text(id)))
	if text != "" && !containsWord(text, "error", "invalid", "required") {
		if err := doc.InsertAt(id, 0, doc.NewText("Error: ")); err == nil {
			changes = append(changes, Change{
				Type:        ErrorTextAdded,
				Element:     ident,
				ElementType: doc.Tag(id),
				NewValue:    "Error:",
				Reason:      "Validation message did not say it was an error",
			})
		}
	}

	if !hasIcon(doc, id) {
		if err := doc.InsertAt(id, 0, newIcon(doc, "⚠")); err == nil {
			changes = append(changes, Change{
				Type:        IconAdded,
				Element:     ident,
				ElementType: doc.Tag(id),
				NewValue:    "⚠",
				Reason:      "Validation error had no icon",
			})
		}
	}
	return changes
}

// FixStatusBadge labels a badge with the status its background implies.
// Short or generic text gets an explicit label; anything else gets an icon.
func FixStatusBadge(r *style.Resolver, id dom.NodeID) (Change, bool) {
	doc := r.Document()
	bg, _ := r.BackgroundColor(id)
	status := InferStatus(bg)
	text := strings.TrimSpace(doc.Text(id))

	switch strings.ToLower(text) {
	case "ok", "no", "yes":
	default:
		if len(text) >= 3 {
			icon := statusIcons[status]
			if strings.Contains(text, icon) || hasIcon(doc, id) {
				return Change{}, false
			}
			if err := doc.InsertAt(id, 0, newIcon(doc, icon)); err != nil {
				return Change{}, false
			}
			return Change{
				Type:        IconAdded,
				Element:     doc.Identifier(id),
				ElementType: doc.Tag(id),
				NewValue:    icon,
				Reason:      fmt.Sprintf("Status badge relied on a %s background (%s)", status, bg),
			}, true
		}
	}

	label := statusLabels[status]
	replacement := label
	if text != "" {
		replacement = label + ": " + text
	}
	for _, c := range doc.Children(id) {
		doc.Detach(c)
	}
	if err := doc.AppendChild(id, doc.NewText(replacement)); err != nil {
		return Change{}, false
	}
	return Change{
		Type:        StatusTextAdded,
		Element:     doc.Identifier(id),
		ElementType: doc.Tag(id),
		OldValue:    text,
		NewValue:    replacement,
		Reason:      fmt.Sprintf("Status badge relied on a %s background (%s)", status, bg),
	}, true
}

// newIcon builds <i aria-hidden="true">icon </i>
func newIcon(doc *dom.Document, icon string) dom.NodeID {
	i := doc.NewElement("i", dom.Attribute{Key: "aria-hidden", Val: "true"})
	_ = doc.AppendChild(i, doc.NewText(icon+" "))
	return i
}

func hasIcon(doc *dom.Document, id dom.NodeID) bool {
	found := false
	doc.Walk(id, func(n dom.NodeID) bool {
		if n == id {
			return true
		}
		switch doc.Tag(n) {
		case "i", "svg", "img":
			found = true
		}
		return !found
	})
	return found
}

func containsWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
