package remediate_test

import (
	"testing"

	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/parser/html"
	"bennypowers.dev/a11yaudit/internal/remediate"
	"bennypowers.dev/a11yaudit/internal/style"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *dom.Document {
	t.Helper()
	doc, err := html.Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

func byID(t *testing.T, doc *dom.Document, id string) dom.NodeID {
	t.Helper()
	n, ok := doc.ElementByID(id)
	require.True(t, ok, id)
	return n
}

func TestTabOrderStripsTabindex(t *testing.T) {
	doc := parse(t, `
<button id="b" tabindex="5">Go</button>
<div id="d" tabindex="0">plain</div>
<div id="r" tabindex="0" role="button">widget</div>
<span id="h" tabindex="0" onclick="f()">handler</span>
<li id="l" tabindex="0">item</li>`)

	changes := remediate.NewTabOrder(doc, remediate.DefaultOptions()).Run()

	assert.False(t, doc.HasAttr(byID(t, doc, "b"), "tabindex"))
	assert.False(t, doc.HasAttr(byID(t, doc, "d"), "tabindex"))
	assert.True(t, doc.HasAttr(byID(t, doc, "r"), "tabindex"))
	assert.True(t, doc.HasAttr(byID(t, doc, "h"), "tabindex"))
	assert.True(t, doc.HasAttr(byID(t, doc, "l"), "tabindex"))

	want := []remediate.Change{
		{
			Type:        remediate.PositiveTabindexRemoved,
			Element:     "button#b",
			ElementType: "button",
			OldValue:    "5",
			Reason:      "Positive tabindex disrupts natural tab order",
		},
		{
			Type:        remediate.ZeroTabindexRemoved,
			Element:     "div#d",
			ElementType: "div",
			OldValue:    "0",
			Reason:      "Non-interactive element does not need tabindex",
		},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipTargetIsIdempotent(t *testing.T) {
	doc := parse(t, `<a href="#main">Skip to content</a><a href="#nav">Navigation</a><main id="main">x</main><nav id="nav"></nav>`)

	first := remediate.NewTabOrder(doc, remediate.DefaultOptions()).Run()
	require.Len(t, first, 1)
	assert.Equal(t, remediate.NegativeTabindexAdded, first[0].Type)
	assert.Equal(t, "main#main", first[0].Element)

	v, ok := doc.Attr(byID(t, doc, "main"), "tabindex")
	require.True(t, ok)
	assert.Equal(t, "-1", v)
	assert.False(t, doc.HasAttr(byID(t, doc, "nav"), "tabindex"))

	second := remediate.NewTabOrder(doc, remediate.DefaultOptions()).Run()
	assert.Empty(t, second)
}

func TestSkipTargetMissing(t *testing.T) {
	doc := parse(t, `<a href="#gone">Skip</a>`)
	changes := remediate.NewTabOrder(doc, remediate.DefaultOptions()).Run()
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Skipped)
	assert.Equal(t, 0, remediate.Applied(changes))
}

const scrambled = `<nav id="n"><a id="c" href="/c" data-x="0" data-y="100">C</a><a id="b" href="/b" data-x="50" data-y="0">B</a><a id="a" href="/a" data-x="10" data-y="0">A</a></nav>`

func TestTabOrderReorders(t *testing.T) {
	doc := parse(t, scrambled)
	tab := remediate.NewTabOrder(doc, remediate.DefaultOptions())

	var steps []remediate.Step
	for {
		steps = append(steps, tab.Step())
		if !tab.Advance() {
			break
		}
	}
	assert.Equal(t, []remediate.Step{
		remediate.Detect, remediate.StripPositive, remediate.StripZero,
		remediate.Reorder, remediate.PatchSkipTargets,
	}, steps)

	changes := tab.Changes()
	require.Len(t, changes, 1)
	assert.Equal(t, remediate.DOMReordered, changes[0].Type)
	assert.Equal(t, "nav#n", changes[0].Parent)
	assert.Equal(t, []string{"a#a", "a#b", "a#c"}, changes[0].Elements)

	var order []string
	for _, c := range doc.ChildElements(byID(t, doc, "n")) {
		v, _ := doc.Attr(c, "id")
		order = append(order, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTabOrderReorderDisabled(t *testing.T) {
	doc := parse(t, scrambled)
	before := doc.String()
	changes := remediate.NewTabOrder(doc, remediate.Options{ReorderDOM: false}).Run()
	assert.Empty(t, changes)
	assert.Equal(t, before, doc.String())
}

func TestReorderNeverCrossesParents(t *testing.T) {
	doc := parse(t, `<div id="p1"><a id="x" href="/x" data-x="0" data-y="100">X</a></div><div id="p2"><a id="y" href="/y" data-x="0" data-y="0">Y</a></div>`)
	changes := remediate.NewTabOrder(doc, remediate.DefaultOptions()).Run()
	assert.Empty(t, changes)
	assert.Equal(t, byID(t, doc, "p1"), doc.Parent(byID(t, doc, "x")))
	assert.Equal(t, byID(t, doc, "p2"), doc.Parent(byID(t, doc, "y")))
}

func TestParsePatches(t *testing.T) {
	patches, err := remediate.ParsePatches([]byte(`[
  // reviewer suggestions
  {"type": "reorder", "elements": ["a#c", "#a"], "new_order": [1, 0], "reason": "reading order"},
  {"type": "add_tabindex", "elements": ["main#m"]},
]`))
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, remediate.ReorderPatch, patches[0].Type)
	assert.Equal(t, []int{1, 0}, patches[0].NewOrder)
	assert.Equal(t, remediate.AddTabindexPatch, patches[1].Type)

	_, err = remediate.ParsePatches([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestApplyPatches(t *testing.T) {
	doc := parse(t, `<nav id="n"><a id="c" href="/c">C</a><a id="a" href="/a">A</a></nav><main id="m">m</main><div id="d" tabindex="3">d</div>`)

	changes := remediate.ApplyPatches(doc, []remediate.Patch{
		{Type: remediate.ReorderPatch, Elements: []string{"a#c", "#a"}, NewOrder: []int{1, 0}},
		{Type: remediate.AddTabindexPatch, Elements: []string{"main#m"}, Value: "-1"},
		{Type: remediate.RemoveTabindexPatch, Elements: []string{"#d"}},
		{Type: remediate.AddTabindexPatch, Elements: []string{"#missing"}},
		{Type: remediate.ReorderPatch, Elements: []string{"#a", "#m"}, NewOrder: []int{1, 0}},
		{Type: "rename", Elements: []string{"#a"}},
	})

	want := []remediate.Change{
		{Type: remediate.PatchReorder, Parent: "nav#n", Elements: []string{"a#c", "#a"}, Reason: "Suggested reordering"},
		{Type: remediate.PatchTabindexAdded, Elements: []string{"main#m"}, NewValue: "-1", Reason: "Suggested tabindex"},
		{Type: remediate.PatchTabindexRemoved, Elements: []string{"#d"}, Reason: "Suggested removal"},
		{Type: remediate.PatchTabindexAdded, Elements: []string{"#missing"}, Reason: "element not found: #missing", Skipped: true},
		{Type: remediate.PatchReorder, Elements: []string{"#a", "#m"}, Reason: "elements do not share a parent", Skipped: true},
		{Type: "rename", Elements: []string{"#a"}, Reason: `unknown patch type "rename"`, Skipped: true},
	}
	if diff := cmp.Diff(want, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}

	kids := doc.ChildElements(byID(t, doc, "n"))
	assert.Equal(t, []dom.NodeID{byID(t, doc, "a"), byID(t, doc, "c")}, kids)
	v, _ := doc.Attr(byID(t, doc, "m"), "tabindex")
	assert.Equal(t, "-1", v)
	assert.False(t, doc.HasAttr(byID(t, doc, "d"), "tabindex"))
}

func TestApplyPatches_UnresolvableTargets(t *testing.T) {
	const src = `<div id="box"><button>One</button><button>Two</button></div>`
	doc := parse(t, src)

	changes := remediate.ApplyPatches(doc, []remediate.Patch{
		{Type: remediate.AddTabindexPatch, Elements: []string{"button"}},
		{Type: remediate.ReorderPatch, Elements: []string{"button", "button"}, NewOrder: []int{1, 0}},
		{Type: remediate.RemoveTabindexPatch, Elements: []string{"#box", "div#box"}},
	})

	require.Len(t, changes, 3)
	for _, c := range changes {
		assert.True(t, c.Skipped, "%s should be skipped", c.Type)
	}
	assert.Contains(t, changes[0].Reason, "more than one element")
	assert.Contains(t, changes[2].Reason, "listed twice")
	assert.Equal(t, 0, remediate.Applied(changes))
	assert.NotContains(t, doc.String(), "tabindex")

	t.Run("reorder that changes nothing", func(t *testing.T) {
		doc := parse(t, `<nav><a id="x" href="/x">x</a><a id="y" href="/y">y</a></nav>`)
		changes := remediate.ApplyPatches(doc, []remediate.Patch{
			{Type: remediate.ReorderPatch, Elements: []string{"#x", "#y"}, NewOrder: []int{0, 1}},
		})
		require.Len(t, changes, 1)
		assert.True(t, changes[0].Skipped)
		assert.Equal(t, "elements already in the requested order", changes[0].Reason)
	})
}

func TestFixTextContrast(t *testing.T) {
	doc := parse(t, `<p id="p" style="font-weight: 400; color:#777777">grey</p><p id="ok">fine</p>`)
	r := style.New(doc)

	change, ok := remediate.FixTextContrast(r, byID(t, doc, "p"), contrast.AA)
	require.True(t, ok)
	assert.Equal(t, remediate.TextColorAdjusted, change.Type)
	assert.Equal(t, "#777777", change.OldValue)

	fg, ok := r.TextColor(byID(t, doc, "p"))
	require.True(t, ok)
	assert.Equal(t, color.Resolved(change.NewValue), fg)
	assert.GreaterOrEqual(t, color.ContrastRatio(fg, color.White), 4.5)

	inline, _ := doc.Attr(byID(t, doc, "p"), "style")
	assert.Contains(t, inline, "font-weight: 400")

	_, ok = remediate.FixTextContrast(r, byID(t, doc, "ok"), contrast.AA)
	assert.False(t, ok)
}

func TestFixNonTextContrast(t *testing.T) {
	doc := parse(t, `<div style="background:#ffffff"><input id="i" style="border:1px solid #dddddd"><svg id="s" stroke="#eeeeee"></svg></div>`)
	r := style.New(doc)

	changes := remediate.FixNonTextContrast(r, byID(t, doc, "i"))
	require.Len(t, changes, 1)
	assert.Equal(t, remediate.BorderColorAdjusted, changes[0].Type)
	bc, ok := r.Color(r.ComputedStyle(byID(t, doc, "i"), "border-color"))
	require.True(t, ok)
	assert.GreaterOrEqual(t, color.ContrastRatio(bc, color.White), 3.0)

	svg := byID(t, doc, "s")
	changes = remediate.FixNonTextContrast(r, svg)
	require.Len(t, changes, 1)
	assert.Equal(t, remediate.StrokeAdjusted, changes[0].Type)
	stroke, _ := doc.Attr(svg, "stroke")
	assert.Equal(t, changes[0].NewValue, stroke)
	width, _ := doc.Attr(svg, "stroke-width")
	assert.Equal(t, "2", width)
}

func TestInferStatus(t *testing.T) {
	tests := []struct {
		bg   color.Resolved
		want remediate.Status
	}{
		{"#00AA00", remediate.StatusSuccess},
		{"#DD0000", remediate.StatusError},
		{"#0000FF", remediate.StatusInfo},
		{"#808080", remediate.StatusUnknown},
		{color.Transparent, remediate.StatusUnknown},
	}
	for _, tt := range tests {
		t.Run(string(tt.bg), func(t *testing.T) {
			assert.Equal(t, tt.want, remediate.InferStatus(tt.bg))
		})
	}
}

func TestFixColorOnly(t *testing.T) {
	t.Run("link gains an underline", func(t *testing.T) {
		doc := parse(t, `<p>Read <a id="l" href="/x" style="color:#0000ff;text-decoration:none">more</a></p>`)
		r := style.New(doc)
		changes := remediate.FixColorOnly(r, byID(t, doc, "l"), remediate.LinkUnderlinePattern)
		require.Len(t, changes, 1)
		assert.Equal(t, remediate.LinkUnderlineAdded, changes[0].Type)
		assert.Equal(t, "none", changes[0].OldValue)
		v, _ := r.Declared(byID(t, doc, "l"), "text-decoration")
		assert.Equal(t, "underline", v)
	})

	t.Run("required field", func(t *testing.T) {
		doc := parse(t, `<label id="lbl" for="email">Email <span style="color:#ff0000">*</span></label><input id="email" type="email">`)
		changes := remediate.FixColorOnly(style.New(doc), byID(t, doc, "email"), remediate.RequiredFieldPattern)
		require.Len(t, changes, 2)
		assert.Equal(t, []remediate.ChangeType{remediate.RequiredAttributeAdded, remediate.RequiredTextAdded},
			[]remediate.ChangeType{changes[0].Type, changes[1].Type})

		input := byID(t, doc, "email")
		assert.True(t, doc.HasAttr(input, "required"))
		v, _ := doc.Attr(input, "aria-required")
		assert.Equal(t, "true", v)
		assert.Equal(t, "Email * (required)", doc.Text(byID(t, doc, "lbl")))

		again := remediate.FixRequiredField(doc, input)
		assert.Empty(t, again, "a second pass finds nothing to add")
	})

	t.Run("validation error", func(t *testing.T) {
		doc := parse(t, `<span id="e" class="error" style="color:#ff0000">Please check this field</span>`)
		e := byID(t, doc, "e")
		changes := remediate.FixColorOnly(style.New(doc), e, remediate.ValidationErrorPattern)
		require.Len(t, changes, 3)
		assert.Equal(t, remediate.ErrorAnnounced, changes[0].Type)
		assert.Equal(t, `role="alert" aria-live="polite"`, changes[0].NewValue)
		assert.Equal(t, remediate.ErrorTextAdded, changes[1].Type)
		assert.Equal(t, remediate.IconAdded, changes[2].Type)
		assert.Equal(t, "⚠ Error: Please check this field", doc.Text(e))
		assert.Contains(t, doc.String(), `<i aria-hidden="true">`)
	})

	t.Run("validation error that names itself keeps its text", func(t *testing.T) {
		doc := parse(t, `<div id="e" class="invalid" role="status"><svg></svg>Invalid date</div>`)
		changes := remediate.FixValidationError(doc, byID(t, doc, "e"))
		require.Len(t, changes, 1)
		assert.Equal(t, `aria-live="polite"`, changes[0].NewValue)
	})

	t.Run("short status badge gets a label", func(t *testing.T) {
		doc := parse(t, `<span id="b" class="badge" style="background-color:#00aa00">ok</span>`)
		changes := remediate.FixColorOnly(style.New(doc), byID(t, doc, "b"), remediate.StatusBadgePattern)
		require.Len(t, changes, 1)
		assert.Equal(t, remediate.StatusTextAdded, changes[0].Type)
		assert.Equal(t, "ok", changes[0].OldValue)
		assert.Equal(t, "Success: ok", doc.Text(byID(t, doc, "b")))
	})

	t.Run("longer status badge gets an icon", func(t *testing.T) {
		doc := parse(t, `<span id="b" class="status" style="background-color:#0000ff">Done</span>`)
		changes := remediate.FixColorOnly(style.New(doc), byID(t, doc, "b"), remediate.StatusBadgePattern)
		require.Len(t, changes, 1)
		assert.Equal(t, remediate.IconAdded, changes[0].Type)
		assert.Equal(t, "ℹ Done", doc.Text(byID(t, doc, "b")))
	})

	t.Run("unknown pattern", func(t *testing.T) {
		doc := parse(t, `<p id="p">x</p>`)
		assert.Empty(t, remediate.FixColorOnly(style.New(doc), byID(t, doc, "p"), "heatmap"))
	})
}
