package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Mirror is a golang.org/x/net/html projection of a Document, used for
// serialization and for selector engines that operate on *html.Node.
type Mirror struct {
	Root  *html.Node
	nodes map[*html.Node]NodeID
	ids   map[NodeID]*html.Node
}

// NodeID returns the arena id a mirrored node was built from
func (m *Mirror) NodeID(n *html.Node) (NodeID, bool) {
	id, ok := m.nodes[n]
	return id, ok
}

// HTMLNode returns the mirrored node for an arena id
func (m *Mirror) HTMLNode(id NodeID) *html.Node {
	return m.ids[id]
}

// Mirror builds an *html.Node tree for the attached part of d
func (d *Document) Mirror() *Mirror {
	m := &Mirror{
		nodes: make(map[*html.Node]NodeID, len(d.nodes)),
		ids:   make(map[NodeID]*html.Node, len(d.nodes)),
	}
	m.Root = d.mirror(d.Root(), m)
	return m
}

func (d *Document) mirror(id NodeID, m *Mirror) *html.Node {
	src := &d.nodes[id]
	n := &html.Node{}
	switch src.Type {
	case DocumentNode:
		n.Type = html.DocumentNode
	case ElementNode:
		n.Type = html.ElementNode
		n.Data = src.Tag
		n.DataAtom = atom.Lookup([]byte(src.Tag))
		for _, a := range src.Attrs {
			n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
	case TextNode:
		n.Type = html.TextNode
		n.Data = src.Data
	case CommentNode:
		n.Type = html.CommentNode
		n.Data = src.Data
	case DoctypeNode:
		n.Type = html.DoctypeNode
		n.Data = src.Data
	}
	m.nodes[n] = id
	m.ids[id] = n
	for _, c := range src.Children {
		n.AppendChild(d.mirror(c, m))
	}
	return n
}

// Render serializes the document as HTML
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.Mirror().Root)
}

// String returns the serialized document
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// OuterHTML serializes a single node and its subtree
func (d *Document) OuterHTML(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	m := &Mirror{nodes: map[*html.Node]NodeID{}, ids: map[NodeID]*html.Node{}}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.mirror(id, m)); err != nil {
		return ""
	}
	return buf.String()
}

// StartTag renders only the opening tag of an element, which is enough to
// point a reader at it without dumping its whole subtree.
func (d *Document) StartTag(id NodeID) string {
	n := d.Node(id)
	if n == nil || n.Type != ElementNode {
		return ""
	}
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Tag)
	for _, a := range n.Attrs {
		b.WriteString(" ")
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}
