package visualorder_test

import (
	"testing"

	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/parser/html"
	"bennypowers.dev/a11yaudit/internal/visualorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elementsOf(positioned []visualorder.PositionedElement) []dom.NodeID {
	out := make([]dom.NodeID, len(positioned))
	for i, p := range positioned {
		out[i] = p.Element
	}
	return out
}

func TestSort(t *testing.T) {
	els := []visualorder.PositionedElement{
		{Element: 1, Box: visualorder.Box{X: 50, Y: 0}, DOMIndex: 0},
		{Element: 2, Box: visualorder.Box{X: 10, Y: 0}, DOMIndex: 1},
		{Element: 3, Box: visualorder.Box{X: 0, Y: 100}, DOMIndex: 2},
	}
	got := visualorder.Sort(els, visualorder.DefaultThreshold)
	assert.Equal(t, []dom.NodeID{2, 1, 3}, elementsOf(got))
}

func TestGroupRows(t *testing.T) {
	t.Run("threshold is inclusive", func(t *testing.T) {
		rows := visualorder.GroupRows([]visualorder.PositionedElement{
			{Element: 1, Box: visualorder.Box{Y: 0, Height: 10}},
			{Element: 2, Box: visualorder.Box{Y: 20, Height: 10}},
			{Element: 3, Box: visualorder.Box{Y: 21}},
		}, 20)
		require.Len(t, rows, 2)
		assert.Equal(t, 0.0, rows[0].YMin)
		assert.Equal(t, 30.0, rows[0].YMax)
		assert.Len(t, rows[0].Elements, 2)
	})

	t.Run("rows widen upward", func(t *testing.T) {
		rows := visualorder.GroupRows([]visualorder.PositionedElement{
			{Element: 1, Box: visualorder.Box{Y: 30}},
			{Element: 2, Box: visualorder.Box{Y: 15}},
			{Element: 3, Box: visualorder.Box{Y: 0}},
		}, 20)
		require.Len(t, rows, 1)
		assert.Equal(t, 0.0, rows[0].YMin)
	})

	t.Run("membership is exclusive", func(t *testing.T) {
		els := []visualorder.PositionedElement{
			{Element: 1, Box: visualorder.Box{Y: 0}},
			{Element: 2, Box: visualorder.Box{Y: 10}},
			{Element: 3, Box: visualorder.Box{Y: 200}},
			{Element: 4, Box: visualorder.Box{Y: 205}},
		}
		seen := map[dom.NodeID]int{}
		for _, row := range visualorder.GroupRows(els, 20) {
			for _, el := range row.Elements {
				seen[el.Element]++
			}
		}
		assert.Equal(t, map[dom.NodeID]int{1: 1, 2: 1, 3: 1, 4: 1}, seen)
	})
}

func TestMismatches(t *testing.T) {
	positioned := []visualorder.PositionedElement{
		{Element: 1, Box: visualorder.Box{X: 50}, DOMIndex: 0},
		{Element: 2, Box: visualorder.Box{X: 10}, DOMIndex: 1},
		{Element: 3, Box: visualorder.Box{Y: 100}, DOMIndex: 2},
	}
	visual := visualorder.Sort(positioned, 20)
	got := visualorder.Mismatches(positioned, visual)
	require.Len(t, got, 1)
	assert.Equal(t, visualorder.Placement{Element: 1, DOMIndex: 0, VisualIndex: 1}, got[0].Current)
	assert.Equal(t, visualorder.Placement{Element: 2, DOMIndex: 1, VisualIndex: 0}, got[0].Next)
}

func TestBoundingBox(t *testing.T) {
	doc, err := html.Parse([]byte(`
<a id="a" href="#" data-bda-bbox="10, 20, 30, 40">a</a>
<a id="b" href="#" data-x="5" data-y="6">b</a>
<a id="c" href="#" data-bda-bbox="1,2,3">c</a>
<a id="d" href="#" data-x="x" data-y="1">d</a>
<a id="e" href="#">e</a>`))
	require.NoError(t, err)

	box := func(id string) (visualorder.Box, bool) {
		n, ok := doc.ElementByID(id)
		require.True(t, ok)
		return visualorder.BoundingBox(doc, n)
	}

	b, ok := box("a")
	require.True(t, ok)
	assert.Equal(t, visualorder.Box{X: 10, Y: 20, Width: 30, Height: 40}, b)

	b, ok = box("b")
	require.True(t, ok)
	assert.Equal(t, visualorder.Box{X: 5, Y: 6}, b)

	for _, id := range []string{"c", "d", "e"} {
		_, ok := box(id)
		assert.False(t, ok, id)
	}
}

func TestInteractive(t *testing.T) {
	doc, err := html.Parse([]byte(`
<a id="link" href="/">l</a>
<a id="anchor">no href</a>
<button id="btn">b</button>
<button id="off" disabled>b</button>
<input id="text" type="text">
<input id="hidden" type="hidden">
<select id="sel"></select>
<textarea id="ta"></textarea>
<div id="focusable" tabindex="0">d</div>
<div id="programmatic" tabindex="-1">d</div>
<span id="bad" tabindex="abc">s</span>
<area id="area" href="/x">`))
	require.NoError(t, err)

	var got []string
	for _, id := range visualorder.Interactive(doc) {
		v, _ := doc.Attr(id, "id")
		got = append(got, v)
	}
	assert.Equal(t, []string{"link", "btn", "text", "sel", "ta", "focusable", "area"}, got)
}

func TestTabIndex(t *testing.T) {
	doc, err := html.Parse([]byte(`<div tabindex=" 3 "></div><div tabindex="1.5"></div>`))
	require.NoError(t, err)
	divs := doc.ElementsByTag("div")

	n, ok := visualorder.TabIndex(doc, divs[0])
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = visualorder.TabIndex(doc, divs[1])
	assert.False(t, ok)
}

func TestAnalyze(t *testing.T) {
	doc, err := html.Parse([]byte(`
<nav>
  <a href="/b" data-x="200" data-y="0">B</a>
  <a href="/a" data-x="0" data-y="0">A</a>
  <a href="/c">no box</a>
</nav>`))
	require.NoError(t, err)

	a := visualorder.Analyze(doc, 0)
	assert.Len(t, a.Interactive, 3)
	assert.Len(t, a.Positioned, 2)
	require.Len(t, a.Mismatches, 1)
	assert.Equal(t, 0, a.Mismatches[0].Current.DOMIndex)

	single, err := html.Parse([]byte(`<a href="/" data-x="0" data-y="0">x</a>`))
	require.NoError(t, err)
	assert.Empty(t, visualorder.Analyze(single, 20).Visual)
}
