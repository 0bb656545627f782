package css

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"bennypowers.dev/a11yaudit/internal/color"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_css "github.com/tree-sitter/tree-sitter-css/bindings/go"
)

// Parser handles parsing CSS with tree-sitter
type Parser struct {
	parser *sitter.Parser
}

var cssLang = sitter.NewLanguage(tree_sitter_css.Language())

// parserPool is a pool of reusable CSS parsers
var parserPool = sync.Pool{
	New: func() any {
		return NewParser()
	},
}

// NewParser creates a new CSS parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	if err := parser.SetLanguage(cssLang); err != nil {
		panic(fmt.Sprintf("failed to set CSS language: %v", err))
	}
	return &Parser{parser: parser}
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

var commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

// StripComments removes /* */ comments. Newlines inside comments are kept
// so rule line numbers still point at the original text.
func StripComments(text string) string {
	return commentPattern.ReplaceAllStringFunc(text, func(c string) string {
		return strings.Repeat("\n", strings.Count(c, "\n"))
	})
}

// ParseStylesheet extracts every rule set, including those nested in
// @media and other conditional blocks, in source order.
func (p *Parser) ParseStylesheet(text string) ([]Rule, error) {
	source := []byte(StripComments(text))
	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse CSS")
	}
	defer tree.Close()

	var rules []Rule
	p.walkTree(tree.RootNode(), source, &rules)
	return rules, nil
}

// ParseDeclarations parses the body of a style attribute.
// The text is wrapped in a dummy rule to make it a valid stylesheet.
func (p *Parser) ParseDeclarations(inline string) []Declaration {
	if strings.TrimSpace(inline) == "" {
		return nil
	}
	rules, err := p.ParseStylesheet("x{" + inline + "}")
	if err != nil || len(rules) == 0 {
		return nil
	}
	var decls []Declaration
	for _, r := range rules {
		decls = append(decls, r.Declarations...)
	}
	return decls
}

// walkTree recursively walks the tree to find rule sets
func (p *Parser) walkTree(node *sitter.Node, source []byte, rules *[]Rule) {
	if node == nil {
		return
	}

	if node.Kind() == "rule_set" {
		if rule, ok := p.handleRuleSet(node, source); ok {
			*rules = append(*rules, rule)
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		p.walkTree(node.Child(i), source, rules)
	}
}

// handleRuleSet turns a rule_set node into a Rule
func (p *Parser) handleRuleSet(node *sitter.Node, source []byte) (Rule, bool) {
	var selectors, block *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "selectors":
			selectors = child
		case "block":
			block = child
		}
	}
	if selectors == nil || block == nil {
		return Rule{}, false
	}

	rule := Rule{
		Selector: strings.Join(strings.Fields(nodeText(selectors, source)), " "),
		Line:     node.StartPosition().Row + 1,
	}
	for i := uint(0); i < block.ChildCount(); i++ {
		child := block.Child(i)
		if child.Kind() != "declaration" {
			continue
		}
		if decl, ok := p.handleDeclaration(child, source); ok {
			rule.Declarations = append(rule.Declarations, expand(decl)...)
		}
	}
	if len(rule.Declarations) == 0 {
		return Rule{}, false
	}
	return rule, true
}

// handleDeclaration processes a CSS declaration node. The value is taken
// verbatim from the source between the colon and the terminator so that
// functions and commas survive untouched.
func (p *Parser) handleDeclaration(node *sitter.Node, source []byte) (Declaration, bool) {
	var decl Declaration
	valueStart, valueEnd := uint(0), node.EndByte()

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_name":
			decl.Property = strings.ToLower(nodeText(child, source))
		case ":":
			if valueStart == 0 {
				valueStart = child.EndByte()
			}
		case "important":
			decl.Important = true
			valueEnd = min(valueEnd, child.StartByte())
		case ";":
			valueEnd = min(valueEnd, child.StartByte())
		}
	}

	if decl.Property == "" || valueStart == 0 || valueStart > valueEnd {
		return Declaration{}, false
	}
	decl.Value = strings.TrimSpace(string(source[valueStart:valueEnd]))
	if decl.Value == "" {
		return Declaration{}, false
	}
	return decl, true
}

func nodeText(n *sitter.Node, source []byte) string {
	return string(source[n.StartByte():n.EndByte()])
}

// colorShorthands maps shorthands to the color longhand they reset
var colorShorthands = map[string]string{
	"background": "background-color",
	"border":     "border-color",
	"outline":    "outline-color",
}

// expand derives the color longhand of a shorthand. A shorthand resets its
// longhand, so the derived value follows it and loses to any later
// explicit longhand.
func expand(d Declaration) []Declaration {
	longhand, ok := colorShorthands[d.Property]
	if !ok {
		return []Declaration{d}
	}
	value, ok := shorthandColor(d.Property, d.Value)
	if !ok {
		return []Declaration{d}
	}
	return []Declaration{d, {
		Property:  longhand,
		Value:     value,
		Important: d.Important,
		Derived:   true,
	}}
}

// shorthandColor picks the color token out of a shorthand value. Without
// one, background resets to transparent and border or outline to
// currentcolor. A line style of none draws nothing, so no color is derived.
func shorthandColor(property, value string) (string, bool) {
	tokens := splitTopLevel(value)
	for _, tok := range tokens {
		if _, ok := color.Normalize(tok); ok {
			return tok, true
		}
	}
	if strings.Contains(value, "var(") {
		return value, true
	}
	if property == "background" {
		return string(color.Transparent), true
	}
	for _, tok := range tokens {
		if t := strings.ToLower(tok); t == "none" || t == "hidden" {
			return "", false
		}
	}
	return "currentcolor", true
}

// splitTopLevel splits on whitespace, commas and slashes outside parentheses
func splitTopLevel(value string) []string {
	var parts []string
	depth, start := 0, 0
	flush := func(end int) {
		if tok := strings.TrimSpace(value[start:end]); tok != "" {
			parts = append(parts, tok)
		}
	}
	for i, r := range value {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0 && (r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '/'):
			flush(i)
			start = i + 1
		}
	}
	flush(len(value))
	return parts
}

// ParseStylesheet is a convenience wrapper around a pooled Parser
func ParseStylesheet(text string) ([]Rule, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ParseStylesheet(text)
}

// ParseDeclarations is a convenience wrapper around a pooled Parser
func ParseDeclarations(inline string) []Declaration {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ParseDeclarations(inline)
}
