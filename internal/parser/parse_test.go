package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/a11yaudit/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want parser.Kind
	}{
		{"index.html", parser.HTML},
		{"INDEX.HTM", parser.HTML},
		{"page.xhtml", parser.HTML},
		{"site.css", parser.CSS},
		{"app.js", parser.Unknown},
		{"README", parser.Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.KindOf(tt.path))
		})
	}
}

func TestPartition(t *testing.T) {
	docs, sheets, unknown := parser.Partition([]string{"a.html", "b.css", "c.txt", "d.htm"})
	assert.Equal(t, []string{"a.html", "d.htm"}, docs)
	assert.Equal(t, []string{"b.css"}, sheets)
	assert.Equal(t, []string{"c.txt"}, unknown)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(path, []byte(`<p id="x">hi</p>`), 0o600))

	doc, err := parser.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, doc.ElementsByTag("p"), 1)

	_, err = parser.ParseFile(filepath.Join(dir, "missing.html"))
	assert.ErrorContains(t, err, "failed to read")
}

func TestReadStylesheets(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.css")
	require.NoError(t, os.WriteFile(a, []byte("p{color:red}"), 0o600))

	sheets := parser.ReadStylesheets([]string{a, filepath.Join(dir, "missing.css")})
	assert.Equal(t, []string{"p{color:red}"}, sheets)
}
