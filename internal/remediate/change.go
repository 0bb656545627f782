// Package remediate mutates documents to repair focus order, contrast and
// color-only indication problems. Every mutation is recorded as a Change.
package remediate

// ChangeType names a kind of mutation
type ChangeType string

const (
	PositiveTabindexRemoved ChangeType = "positive_tabindex_removed"
	ZeroTabindexRemoved     ChangeType = "unnecessary_tabindex_zero_removed"
	DOMReordered            ChangeType = "dom_reordered"
	NegativeTabindexAdded   ChangeType = "tabindex_negative_added"

	PatchReorder         ChangeType = "ai_reorder"
	PatchTabindexAdded   ChangeType = "ai_tabindex_added"
	PatchTabindexRemoved ChangeType = "ai_tabindex_removed"

	TextColorAdjusted    ChangeType = "text_color_adjusted"
	BorderColorAdjusted  ChangeType = "border_color_adjusted"
	OutlineColorAdjusted ChangeType = "outline_color_adjusted"
	FillAdjusted         ChangeType = "svg_fill_adjusted"
	StrokeAdjusted       ChangeType = "svg_stroke_adjusted"

	LinkUnderlineAdded     ChangeType = "link_underline_added"
	RequiredAttributeAdded ChangeType = "required_attribute_added"
	RequiredTextAdded      ChangeType = "required_text_added"
	ErrorAnnounced         ChangeType = "error_aria_added"
	ErrorTextAdded         ChangeType = "error_text_added"
	IconAdded              ChangeType = "icon_added"
	StatusTextAdded        ChangeType = "status_text_added"
)

// Change is one entry of the remediation audit trail
type Change struct {
	Type ChangeType `json:"type"`
	// Element identifies the changed element (tag#id, tag.class or tag)
	Element     string   `json:"element,omitempty"`
	ElementType string   `json:"element_type,omitempty"`
	Parent      string   `json:"parent,omitempty"`
	Elements    []string `json:"elements,omitempty"`
	OldValue    string   `json:"old_value,omitempty"`
	NewValue    string   `json:"new_value,omitempty"`
	Reason      string   `json:"reason"`
	// Skipped marks a step whose target could not be located; the document
	// was not changed
	Skipped bool `json:"skipped,omitempty"`
}

// Log is an append-only change list
type Log struct {
	changes []Change
}

// Append records c
func (l *Log) Append(c Change) {
	l.changes = append(l.changes, c)
}

// Changes returns a copy of the recorded changes in order
func (l *Log) Changes() []Change {
	return append([]Change(nil), l.changes...)
}

// Len returns the number of recorded changes
func (l *Log) Len() int {
	return len(l.changes)
}

// Applied counts the changes that mutated the document
func Applied(changes []Change) int {
	n := 0
	for _, c := range changes {
		if !c.Skipped {
			n++
		}
	}
	return n
}
