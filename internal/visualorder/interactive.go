package visualorder

import (
	"strconv"
	"strings"

	"bennypowers.dev/a11yaudit/internal/collections"
	"bennypowers.dev/a11yaudit/internal/dom"
)

var (
	// disableable controls leave the tab order when disabled
	disableable = collections.NewSet("button", "input", "select", "textarea")
	// linkLike controls are focusable only with an href
	linkLike = collections.NewSet("a", "area")
)

// TabIndex parses the tabindex attribute. A missing or malformed value
// reports false.
func TabIndex(doc *dom.Document, id dom.NodeID) (int, bool) {
	v, ok := doc.Attr(id, "tabindex")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsInteractive reports whether id takes part in sequential focus
// navigation: links and areas with href, enabled form controls other than
// hidden inputs, and anything with a tabindex other than -1.
func IsInteractive(doc *dom.Document, id dom.NodeID) bool {
	if n, ok := TabIndex(doc, id); ok {
		if n != -1 {
			return true
		}
	}
	tag := doc.Tag(id)
	switch {
	case linkLike.Has(tag):
		return doc.HasAttr(id, "href")
	case disableable.Has(tag):
		if doc.HasAttr(id, "disabled") {
			return false
		}
		if tag == "input" {
			t, _ := doc.Attr(id, "type")
			return !strings.EqualFold(strings.TrimSpace(t), "hidden")
		}
		return true
	}
	return false
}

// Interactive returns the interactive elements in document order
func Interactive(doc *dom.Document) []dom.NodeID {
	var out []dom.NodeID
	for _, id := range doc.Elements() {
		if IsInteractive(doc, id) {
			out = append(out, id)
		}
	}
	return out
}
