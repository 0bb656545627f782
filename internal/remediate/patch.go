package remediate

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/log"
	"github.com/tidwall/jsonc"
)

// PatchType is the tag of a Patch
type PatchType string

const (
	ReorderPatch        PatchType = "reorder"
	AddTabindexPatch    PatchType = "add_tabindex"
	RemoveTabindexPatch PatchType = "remove_tabindex"
)

// Patch is an externally suggested mutation. Elements are identifiers as
// produced by dom.Document.Identifier, or bare "#id".
type Patch struct {
	Type     PatchType `json:"type"`
	Elements []string  `json:"elements"`
	// NewOrder lists indexes into Elements in the desired order (reorder)
	NewOrder []int `json:"new_order,omitempty"`
	// Value is the tabindex to set (add_tabindex); defaults to "0"
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ParsePatches decodes a JSON or JSONC array of patches
func ParsePatches(data []byte) ([]Patch, error) {
	var patches []Patch
	if err := json.Unmarshal(jsonc.ToJSON(data), &patches); err != nil {
		return nil, fmt.Errorf("failed to parse patches: %w", err)
	}
	return patches, nil
}

// LoadPatches reads a patch file
func LoadPatches(path string) ([]Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read patches %s: %w", path, err)
	}
	return ParsePatches(data)
}

// ApplyPatches applies patches in order. A patch whose targets cannot be
// located leaves the document untouched and is recorded as skipped.
func ApplyPatches(doc *dom.Document, patches []Patch) []Change {
	var l Log
	for i, p := range patches {
		c := applyPatch(doc, p)
		if c.Skipped {
			log.Warn("Patch %d (%s) skipped: %s", i, p.Type, c.Reason)
		}
		l.Append(c)
	}
	return l.Changes()
}

func applyPatch(doc *dom.Document, p Patch) Change {
	switch p.Type {
	case ReorderPatch:
		return applyReorder(doc, p)
	case AddTabindexPatch:
		return applyTabindex(doc, p, true)
	case RemoveTabindexPatch:
		return applyTabindex(doc, p, false)
	}
	return Change{
		Type:     ChangeType(p.Type),
		Elements: p.Elements,
		Reason:   fmt.Sprintf("unknown patch type %q", p.Type),
		Skipped:  true,
	}
}

func reasonOr(p Patch, fallback string) string {
	if p.Reason != "" {
		return p.Reason
	}
	return fallback
}

func skipped(t ChangeType, p Patch, why string) Change {
	return Change{Type: t, Elements: p.Elements, Reason: why, Skipped: true}
}

func applyReorder(doc *dom.Document, p Patch) Change {
	if len(p.Elements) < 2 || len(p.NewOrder) != len(p.Elements) {
		return skipped(PatchReorder, p, "new_order must index every element")
	}
	if !isPermutation(p.NewOrder) {
		return skipped(PatchReorder, p, "new_order is not a permutation")
	}

	found, err := lookupAll(doc, p.Elements)
	if err != nil {
		return skipped(PatchReorder, p, err.Error())
	}
	parent := doc.Parent(found[0])
	for _, id := range found[1:] {
		if doc.Parent(id) != parent {
			return skipped(PatchReorder, p, "elements do not share a parent")
		}
	}

	ordered := make([]dom.NodeID, len(found))
	for i, idx := range p.NewOrder {
		ordered[i] = found[idx]
	}
	if !reorderChildren(doc, parent, ordered) {
		return skipped(PatchReorder, p, "elements already in the requested order")
	}
	return Change{
		Type:     PatchReorder,
		Parent:   doc.Identifier(parent),
		Elements: p.Elements,
		Reason:   reasonOr(p, "Suggested reordering"),
	}
}

// lookupAll resolves every identifier to a distinct element
func lookupAll(doc *dom.Document, identifiers []string) ([]dom.NodeID, error) {
	found := make([]dom.NodeID, 0, len(identifiers))
	seen := make(map[dom.NodeID]bool, len(identifiers))
	for _, ident := range identifiers {
		id, err := doc.Lookup(ident)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: %s listed twice", dom.ErrAmbiguous, ident)
		}
		seen[id] = true
		found = append(found, id)
	}
	return found, nil
}

func isPermutation(order []int) bool {
	s := append([]int(nil), order...)
	sort.Ints(s)
	for i, v := range s {
		if v != i {
			return false
		}
	}
	return true
}

func applyTabindex(doc *dom.Document, p Patch, add bool) Change {
	t, why := PatchTabindexRemoved, "Suggested removal"
	value := ""
	if add {
		t, why = PatchTabindexAdded, "Suggested tabindex"
		value = p.Value
		if value == "" {
			value = "0"
		}
	}
	if len(p.Elements) == 0 {
		return skipped(t, p, "no elements")
	}

	targets, err := lookupAll(doc, p.Elements)
	if err != nil {
		return skipped(t, p, err.Error())
	}
	for _, id := range targets {
		if add {
			doc.SetAttr(id, "tabindex", value)
		} else {
			doc.RemoveAttr(id, "tabindex")
		}
	}
	return Change{
		Type:     t,
		Elements: p.Elements,
		NewValue: value,
		Reason:   reasonOr(p, why),
	}
}
