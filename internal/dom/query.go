package dom

import (
	"errors"
	"fmt"
	"strings"
)

// Attr returns the value of attribute key on id
func (d *Document) Attr(id NodeID, key string) (string, bool) {
	n := d.Node(id)
	if n == nil {
		return "", false
	}
	key = strings.ToLower(key)
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether id carries attribute key
func (d *Document) HasAttr(id NodeID, key string) bool {
	_, ok := d.Attr(id, key)
	return ok
}

// SetAttr sets attribute key on id, replacing an existing value in place
func (d *Document) SetAttr(id NodeID, key, val string) {
	n := d.Node(id)
	if n == nil || n.Type != ElementNode {
		return
	}
	key = strings.ToLower(key)
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attribute{Key: key, Val: val})
}

// RemoveAttr deletes attribute key from id and returns its old value
func (d *Document) RemoveAttr(id NodeID, key string) (string, bool) {
	n := d.Node(id)
	if n == nil {
		return "", false
	}
	key = strings.ToLower(key)
	for i, a := range n.Attrs {
		if a.Key == key {
			n.Attrs = append(n.Attrs[:i:i], n.Attrs[i+1:]...)
			return a.Val, true
		}
	}
	return "", false
}

// Classes returns the whitespace-separated class list of id
func (d *Document) Classes(id NodeID) []string {
	v, _ := d.Attr(id, "class")
	return strings.Fields(v)
}

// HasClass reports whether id carries class name
func (d *Document) HasClass(id NodeID, name string) bool {
	for _, c := range d.Classes(id) {
		if c == name {
			return true
		}
	}
	return false
}

// Walk visits id and its descendants in pre-order. Returning false from fn
// skips the node's subtree.
func (d *Document) Walk(id NodeID, fn func(NodeID) bool) {
	if !d.Valid(id) {
		return
	}
	if !fn(id) {
		return
	}
	for _, c := range d.nodes[id].Children {
		d.Walk(c, fn)
	}
}

// Elements returns every attached element in document (pre-)order
func (d *Document) Elements() []NodeID {
	var out []NodeID
	d.Walk(d.Root(), func(id NodeID) bool {
		if d.nodes[id].Type == ElementNode {
			out = append(out, id)
		}
		return true
	})
	return out
}

// ElementsByTag returns attached elements whose tag is one of tags, in document order
func (d *Document) ElementsByTag(tags ...string) []NodeID {
	want := make(map[string]bool, len(tags))
	for _, t := range tags {
		want[strings.ToLower(t)] = true
	}
	var out []NodeID
	for _, id := range d.Elements() {
		if want[d.nodes[id].Tag] {
			out = append(out, id)
		}
	}
	return out
}

// ElementByID returns the first attached element whose id attribute is value
func (d *Document) ElementByID(value string) (NodeID, bool) {
	found := NoNode
	d.Walk(d.Root(), func(id NodeID) bool {
		if found != NoNode {
			return false
		}
		if v, ok := d.Attr(id, "id"); ok && v == value && d.nodes[id].Type == ElementNode {
			found = id
			return false
		}
		return true
	})
	return found, found != NoNode
}

// Closest returns the nearest ancestor element (excluding id) for which
// match returns true
func (d *Document) Closest(id NodeID, match func(NodeID) bool) NodeID {
	for p := d.ParentElement(id); p != NoNode; p = d.ParentElement(p) {
		if match(p) {
			return p
		}
	}
	return NoNode
}

// LabelFor returns the <label for=...> naming input, or the label that
// encloses it
func (d *Document) LabelFor(input NodeID) NodeID {
	if id, ok := d.Attr(input, "id"); ok && id != "" {
		for _, l := range d.ElementsByTag("label") {
			if v, _ := d.Attr(l, "for"); v == id {
				return l
			}
		}
	}
	return d.Closest(input, func(n NodeID) bool { return d.Tag(n) == "label" })
}

// Text returns the concatenated character data below id
func (d *Document) Text(id NodeID) string {
	var b strings.Builder
	d.Walk(id, func(n NodeID) bool {
		node := &d.nodes[n]
		if node.Type == TextNode {
			b.WriteString(node.Data)
		}
		return node.Tag != "script"
	})
	return b.String()
}

// Identifier returns a short readable handle for an element: tag#id,
// tag.class1.class2 (first two classes) or the bare tag.
func (d *Document) Identifier(id NodeID) string {
	tag := d.Tag(id)
	if tag == "" {
		return ""
	}
	if v, ok := d.Attr(id, "id"); ok && v != "" {
		return tag + "#" + v
	}
	classes := d.Classes(id)
	if len(classes) > 2 {
		classes = classes[:2]
	}
	if len(classes) > 0 {
		return tag + "." + strings.Join(classes, ".")
	}
	return tag
}

var (
	// ErrNotFound is returned by Lookup when no element matches
	ErrNotFound = errors.New("element not found")
	// ErrAmbiguous is returned by Lookup when more than one element matches
	ErrAmbiguous = errors.New("identifier matches more than one element")
)

// Lookup resolves an identifier produced by Identifier. Bare "#id" is
// accepted too. The identifier must name exactly one element.
func (d *Document) Lookup(identifier string) (NodeID, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return NoNode, fmt.Errorf("%w: empty identifier", ErrNotFound)
	}
	tag, id, classes := splitIdentifier(identifier)

	found := NoNode
	for _, el := range d.Elements() {
		if tag != "" && d.nodes[el].Tag != tag {
			continue
		}
		if id != "" {
			if v, ok := d.Attr(el, "id"); !ok || v != id {
				continue
			}
		}
		if !d.hasClasses(el, classes) {
			continue
		}
		if found != NoNode {
			return NoNode, fmt.Errorf("%w: %s", ErrAmbiguous, identifier)
		}
		found = el
	}
	if found == NoNode {
		return NoNode, fmt.Errorf("%w: %s", ErrNotFound, identifier)
	}
	return found, nil
}

func splitIdentifier(identifier string) (tag, id string, classes []string) {
	if i := strings.IndexByte(identifier, '#'); i >= 0 {
		return strings.ToLower(identifier[:i]), identifier[i+1:], nil
	}
	parts := strings.Split(identifier, ".")
	return strings.ToLower(parts[0]), "", parts[1:]
}

func (d *Document) hasClasses(id NodeID, classes []string) bool {
	for _, c := range classes {
		if !d.HasClass(id, c) {
			return false
		}
	}
	return true
}
