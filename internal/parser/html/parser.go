package html

import (
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/a11yaudit/internal/dom"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_html "github.com/tree-sitter/tree-sitter-html/bindings/go"
	xhtml "golang.org/x/net/html"
)

// Parser builds dom.Documents from HTML source with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var htmlLang = sitter.NewLanguage(tree_sitter_html.Language())

// parserPool is a pool of reusable HTML parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(htmlLang); err != nil {
			panic(fmt.Sprintf("failed to set HTML language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// Parse is a convenience wrapper around a pooled Parser
func Parse(source []byte) (*dom.Document, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Parse(source)
}

// Parse builds a document from HTML source. Malformed markup is tolerated:
// tree-sitter error nodes are descended into and their well-formed parts kept.
func (p *Parser) Parse(source []byte) (*dom.Document, error) {
	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse HTML")
	}
	defer tree.Close()

	b := &builder{doc: dom.New(), source: source}
	root := tree.RootNode()
	b.content(root, b.doc.Root(), root.StartByte())
	return b.doc, nil
}

type builder struct {
	doc    *dom.Document
	source []byte
}

func (b *builder) text(n *sitter.Node) string {
	return string(b.source[n.StartByte():n.EndByte()])
}

// content appends the children of n to parent, starting at byte offset from.
// Whitespace between tree-sitter nodes is not part of any node, so the gaps
// are carried over as text to keep the serialized output faithful.
func (b *builder) content(n *sitter.Node, parent dom.NodeID, from uint) {
	prev := from
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "start_tag", "self_closing_tag":
			prev = child.EndByte()
			continue
		case "end_tag":
			if child.StartByte() > prev {
				b.appendText(parent, xhtml.UnescapeString(string(b.source[prev:child.StartByte()])), child)
			}
			prev = child.EndByte()
			continue
		}
		if child.StartByte() > prev {
			b.appendText(parent, xhtml.UnescapeString(string(b.source[prev:child.StartByte()])), child)
		}
		b.node(child, parent)
		prev = child.EndByte()
	}
}

func (b *builder) node(n *sitter.Node, parent dom.NodeID) {
	switch n.Kind() {
	case "doctype":
		name := strings.TrimSuffix(strings.TrimPrefix(b.text(n), "<!"), ">")
		name = strings.TrimSpace(name)
		if len(name) >= 7 && strings.EqualFold(name[:7], "doctype") {
			name = strings.TrimSpace(name[7:])
		}
		b.attach(parent, b.doc.NewDoctype(strings.ToLower(name)), n)

	case "element":
		b.element(n, parent, false)

	case "script_element", "style_element":
		b.element(n, parent, true)

	case "text", "entity":
		b.appendText(parent, xhtml.UnescapeString(b.text(n)), n)

	case "comment":
		body := strings.TrimSuffix(strings.TrimPrefix(b.text(n), "<!--"), "-->")
		b.attach(parent, b.doc.NewComment(body), n)

	case "erroneous_end_tag":
		// stray </x> with no open element; browsers drop it too

	default:
		// ERROR and unknown wrappers: keep whatever parsed inside them
		b.content(n, parent, n.StartByte())
	}
}

func (b *builder) element(n *sitter.Node, parent dom.NodeID, raw bool) {
	var tag *sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && (c.Kind() == "start_tag" || c.Kind() == "self_closing_tag") {
			tag = c
			break
		}
	}
	if tag == nil {
		b.content(n, parent, n.StartByte())
		return
	}

	el := b.startTag(tag)
	b.attach(parent, el, n)

	if !raw {
		b.content(n, el, tag.EndByte())
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c != nil && c.Kind() == "raw_text" {
			b.attach(el, b.doc.NewText(b.text(c)), c)
		}
	}
}

func (b *builder) startTag(tag *sitter.Node) dom.NodeID {
	var name string
	var attrs []dom.Attribute
	seen := map[string]bool{}

	for i := uint(0); i < tag.ChildCount(); i++ {
		c := tag.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "tag_name":
			name = strings.ToLower(b.text(c))
		case "attribute":
			a := b.attribute(c)
			// first occurrence wins, as in browsers
			if a.Key != "" && !seen[a.Key] {
				seen[a.Key] = true
				attrs = append(attrs, a)
			}
		}
	}
	return b.doc.NewElement(name, attrs...)
}

func (b *builder) attribute(n *sitter.Node) dom.Attribute {
	var a dom.Attribute
	for i := uint(0); i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "attribute_name":
			a.Key = strings.ToLower(b.text(c))
		case "attribute_value":
			a.Val = xhtml.UnescapeString(b.text(c))
		case "quoted_attribute_value":
			for j := uint(0); j < c.ChildCount(); j++ {
				v := c.Child(j)
				if v != nil && v.Kind() == "attribute_value" {
					a.Val = xhtml.UnescapeString(b.text(v))
				}
			}
		}
	}
	return a
}

func (b *builder) attach(parent, child dom.NodeID, src *sitter.Node) {
	b.doc.Node(child).Line = src.StartPosition().Row + 1
	_ = b.doc.AppendChild(parent, child)
}

// appendText merges runs of text and entities into one text node
func (b *builder) appendText(parent dom.NodeID, s string, src *sitter.Node) {
	if s == "" {
		return
	}
	kids := b.doc.Node(parent).Children
	if len(kids) > 0 {
		last := b.doc.Node(kids[len(kids)-1])
		if last.Type == dom.TextNode {
			last.Data += s
			return
		}
	}
	b.attach(parent, b.doc.NewText(s), src)
}
