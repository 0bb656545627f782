package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/log"
	"bennypowers.dev/a11yaudit/internal/parser/css"
	"bennypowers.dev/a11yaudit/internal/parser/html"
)

// Kind is the parser category an input file uses
type Kind int

const (
	// Unknown files are neither audited nor read as stylesheets
	Unknown Kind = iota
	// HTML documents are audited
	HTML
	// CSS files feed the cascade of every audited document
	CSS
)

// kinds maps file extensions to the parser category they use
var kinds = map[string]Kind{
	".html":  HTML,
	".htm":   HTML,
	".xhtml": HTML,
	".css":   CSS,
}

// KindOf classifies path by extension
func KindOf(path string) Kind {
	return kinds[strings.ToLower(filepath.Ext(path))]
}

// Partition splits paths into documents to audit and stylesheets to load.
// Paths of unknown kind are returned separately.
func Partition(paths []string) (documents, stylesheets, unknown []string) {
	for _, p := range paths {
		switch KindOf(p) {
		case HTML:
			documents = append(documents, p)
		case CSS:
			stylesheets = append(stylesheets, p)
		default:
			unknown = append(unknown, p)
		}
	}
	return documents, stylesheets, unknown
}

// ParseFile reads and parses an HTML document
func ParseFile(path string) (*dom.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: audit inputs are user-supplied paths
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := html.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// ReadStylesheets reads each CSS file into text, in order. Files that
// cannot be read are logged and left out.
func ReadStylesheets(paths []string) []string {
	sheets := make([]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // G304: stylesheet paths come from config globs
		if err != nil {
			log.Warn("Skipping stylesheet %s: %v", p, err)
			continue
		}
		sheets = append(sheets, string(data))
	}
	return sheets
}

// ClosePools releases every pooled tree-sitter parser
func ClosePools() {
	html.ClosePool()
	css.ClosePool()
}
