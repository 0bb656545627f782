// Package dom holds an HTML document as an arena of nodes.
//
// Nodes are addressed by NodeID and link to each other through explicit
// parent and child index lists, so extracting and reinserting children is an
// index rewrite rather than pointer surgery. IDs stay valid for the life of
// the Document; detached nodes remain in the arena.
package dom

import (
	"fmt"
	"strings"
)

// NodeID addresses a node in a Document
type NodeID int

// NoNode is the NodeID of a missing node
const NoNode NodeID = -1

// NodeType identifies the kind of node
type NodeType int

const (
	// DocumentNode is the root of every Document
	DocumentNode NodeType = iota
	// ElementNode is a tag
	ElementNode
	// TextNode holds unescaped character data
	TextNode
	// CommentNode holds the body of <!-- -->
	CommentNode
	// DoctypeNode holds the doctype name
	DoctypeNode
)

// Attribute is a single name/value pair. Keys are lower case.
type Attribute struct {
	Key string
	Val string
}

// Node is one entry in the arena
type Node struct {
	Type     NodeType
	Tag      string // lower-case tag name, elements only
	Data     string // text, comment or doctype content
	Attrs    []Attribute
	Parent   NodeID
	Children []NodeID

	// Line is the 1-based source line the node started on, 0 when synthesized
	Line uint
}

// Document is a node arena rooted at a DocumentNode
type Document struct {
	nodes []Node
}

// New returns an empty Document containing only its root
func New() *Document {
	d := &Document{}
	d.add(Node{Type: DocumentNode})
	return d
}

func (d *Document) add(n Node) NodeID {
	n.Parent = NoNode
	d.nodes = append(d.nodes, n)
	return NodeID(len(d.nodes) - 1)
}

// Root returns the DocumentNode
func (d *Document) Root() NodeID {
	return 0
}

// Len returns the number of nodes in the arena, detached ones included
func (d *Document) Len() int {
	return len(d.nodes)
}

// Valid reports whether id addresses a node of d
func (d *Document) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

// Node returns the node for id, or nil
func (d *Document) Node(id NodeID) *Node {
	if !d.Valid(id) {
		return nil
	}
	return &d.nodes[id]
}

// NewElement adds a detached element
func (d *Document) NewElement(tag string, attrs ...Attribute) NodeID {
	return d.add(Node{Type: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs})
}

// NewText adds a detached text node
func (d *Document) NewText(text string) NodeID {
	return d.add(Node{Type: TextNode, Data: text})
}

// NewComment adds a detached comment node
func (d *Document) NewComment(text string) NodeID {
	return d.add(Node{Type: CommentNode, Data: text})
}

// NewDoctype adds a detached doctype node
func (d *Document) NewDoctype(name string) NodeID {
	return d.add(Node{Type: DoctypeNode, Data: name})
}

// AppendChild attaches child as the last child of parent, detaching it
// from any previous parent first.
func (d *Document) AppendChild(parent, child NodeID) error {
	if !d.Valid(parent) || !d.Valid(child) {
		return fmt.Errorf("append %d to %d: invalid node", child, parent)
	}
	d.Detach(child)
	d.nodes[parent].Children = append(d.nodes[parent].Children, child)
	d.nodes[child].Parent = parent
	return nil
}

// InsertAt attaches child to parent at index, detaching it first.
// An index past the end appends.
func (d *Document) InsertAt(parent NodeID, index int, child NodeID) error {
	if !d.Valid(parent) || !d.Valid(child) {
		return fmt.Errorf("insert %d into %d: invalid node", child, parent)
	}
	if child == parent || d.IsAncestor(child, parent) {
		return fmt.Errorf("insert %d into %d: would create a cycle", child, parent)
	}
	d.Detach(child)

	kids := d.nodes[parent].Children
	if index < 0 {
		index = 0
	}
	if index > len(kids) {
		index = len(kids)
	}
	kids = append(kids, NoNode)
	copy(kids[index+1:], kids[index:])
	kids[index] = child
	d.nodes[parent].Children = kids
	d.nodes[child].Parent = parent
	return nil
}

// Detach removes id from its parent's child list and returns the index it
// occupied, or -1 if it had no parent.
func (d *Document) Detach(id NodeID) int {
	if !d.Valid(id) {
		return -1
	}
	parent := d.nodes[id].Parent
	if parent == NoNode {
		return -1
	}
	index := d.IndexInParent(id)
	if index >= 0 {
		kids := d.nodes[parent].Children
		d.nodes[parent].Children = append(kids[:index:index], kids[index+1:]...)
	}
	d.nodes[id].Parent = NoNode
	return index
}

// IndexInParent returns the position of id among its parent's children
func (d *Document) IndexInParent(id NodeID) int {
	parent := d.Parent(id)
	if parent == NoNode {
		return -1
	}
	for i, c := range d.nodes[parent].Children {
		if c == id {
			return i
		}
	}
	return -1
}

// Parent returns the parent of id, or NoNode
func (d *Document) Parent(id NodeID) NodeID {
	if !d.Valid(id) {
		return NoNode
	}
	return d.nodes[id].Parent
}

// ParentElement returns the nearest ancestor that is an element
func (d *Document) ParentElement(id NodeID) NodeID {
	p := d.Parent(id)
	for p != NoNode && d.nodes[p].Type != ElementNode {
		p = d.nodes[p].Parent
	}
	return p
}

// Children returns a copy of id's child list
func (d *Document) Children(id NodeID) []NodeID {
	if !d.Valid(id) {
		return nil
	}
	return append([]NodeID(nil), d.nodes[id].Children...)
}

// ChildElements returns the element children of id
func (d *Document) ChildElements(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range d.Children(id) {
		if d.nodes[c].Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// IsAncestor reports whether ancestor is a proper ancestor of id
func (d *Document) IsAncestor(ancestor, id NodeID) bool {
	for p := d.Parent(id); p != NoNode; p = d.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// IsElement reports whether id is an element node
func (d *Document) IsElement(id NodeID) bool {
	n := d.Node(id)
	return n != nil && n.Type == ElementNode
}

// Tag returns the lower-case tag name of an element, or ""
func (d *Document) Tag(id NodeID) string {
	if !d.IsElement(id) {
		return ""
	}
	return d.nodes[id].Tag
}

// Attached reports whether id is connected to the root
func (d *Document) Attached(id NodeID) bool {
	if id == d.Root() {
		return true
	}
	return d.IsAncestor(d.Root(), id)
}
