package checks_test

import (
	"testing"

	"bennypowers.dev/a11yaudit/internal/checks"
	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/issues"
	"bennypowers.dev/a11yaudit/internal/parser/html"
	"bennypowers.dev/a11yaudit/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string, level contrast.Level, names ...string) []issues.Issue {
	t.Helper()
	doc, err := html.Parse([]byte(src))
	require.NoError(t, err)
	selected, err := checks.Select(names)
	require.NoError(t, err)

	var c issues.Collector
	ctx := checks.NewContext(doc, style.New(doc), c.Sink())
	ctx.Level = level
	checks.Run(ctx, selected...)
	return c.Issues()
}

func types(list []issues.Issue) []string {
	out := []string{}
	for _, is := range list {
		out = append(out, is.Type)
	}
	return out
}

func TestColorContrast(t *testing.T) {
	t.Run("grey paragraph fails AA", func(t *testing.T) {
		found := run(t, `<p style="color:#777777;background-color:#FFFFFF">Text</p>`, contrast.AA)
		require.Len(t, found, 1)
		is := found[0]
		assert.Equal(t, "insufficient-color-contrast", is.Type)
		assert.Equal(t, "1.4.3", is.WCAGCriterion)
		assert.Equal(t, issues.Major, is.Severity)
		assert.Equal(t, "p", is.Selector)
		assert.Equal(t, "4.48:1", is.Location["contrast_ratio"])
		assert.Equal(t, "4.5:1", is.Location["required_ratio"])
		assert.Equal(t, "#777777", is.Location["text_color"])
		assert.Equal(t, false, is.Location["is_large_text"])
	})

	t.Run("same colors pass as a heading", func(t *testing.T) {
		found := run(t, `<h1 style="color:#777777;background-color:#FFFFFF">Text</h1>`, contrast.AA)
		assert.Empty(t, found)
	})

	t.Run("empty text is ignored", func(t *testing.T) {
		found := run(t, `<p style="color:#EEEEEE"> </p>`, contrast.AA, "color-contrast")
		assert.Empty(t, found)
	})

	t.Run("unresolvable color is a potential issue", func(t *testing.T) {
		found := run(t, `<p style="color:var(--fg)">Text</p>`, contrast.AA, "color-contrast")
		assert.Equal(t, []string{"potential-color-contrast-issue"}, types(found))
		assert.Equal(t, issues.Minor, found[0].Severity)
	})

	t.Run("AAA reports enhanced failures only", func(t *testing.T) {
		const src = `<p style="color:#666666">Text</p>`
		assert.Empty(t, run(t, src, contrast.AA, "color-contrast"))

		found := run(t, src, contrast.AAA, "color-contrast")
		require.Len(t, found, 1)
		assert.Equal(t, "insufficient-color-contrast-aaa", found[0].Type)
		assert.Equal(t, "1.4.6", found[0].WCAGCriterion)
		assert.Equal(t, "7:1", found[0].Location["required_ratio"])
	})
}

func TestNonTextContrast(t *testing.T) {
	t.Run("faint button border", func(t *testing.T) {
		found := run(t, `<button style="border-color:#DDDDDD">Go</button>`, contrast.AA, "non-text-contrast")
		require.Len(t, found, 1)
		assert.Equal(t, "insufficient-ui-component-contrast", found[0].Type)
		assert.Equal(t, "1.4.11", found[0].WCAGCriterion)
		assert.Equal(t, "#DDDDDD", found[0].Location["border_color"])
		assert.Equal(t, "#FFFFFF", found[0].Location["adjacent_color"])
	})

	t.Run("faint icon fill attribute", func(t *testing.T) {
		found := run(t, `<div><svg fill="#EEEEEE"></svg></div>`, contrast.AA, "non-text-contrast")
		require.Len(t, found, 1)
		assert.Equal(t, "insufficient-icon-contrast", found[0].Type)
		assert.Equal(t, "fill", found[0].Location["property"])
	})

	t.Run("strong border passes", func(t *testing.T) {
		found := run(t, `<input style="border:1px solid #333333">`, contrast.AA, "non-text-contrast")
		assert.Empty(t, found)
	})

	t.Run("hidden inputs are skipped", func(t *testing.T) {
		found := run(t, `<input type="hidden" style="border-color:#FEFEFE">`, contrast.AA, "non-text-contrast")
		assert.Empty(t, found)
	})
}

func TestColorUsage(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		pattern string
	}{
		{
			name:    "red asterisk marks required field",
			src:     `<label for="n">Name <span style="color:#FF0000">*</span></label><input id="n">`,
			pattern: "required_field_indicator",
		},
		{
			name: "required attribute",
			src:  `<label for="n">Name <span style="color:#FF0000">*</span></label><input id="n" required>`,
		},
		{
			name: "bold asterisk",
			src:  `<label for="n">Name <span style="color:#FF0000;font-weight:bold">*</span></label><input id="n">`,
		},
		{
			name:    "link without underline",
			src:     `<p style="color:#333333">Read <a href="/x" style="color:#0000EE;text-decoration:none">more</a></p>`,
			pattern: "link_without_underline",
		},
		{
			name: "default underline",
			src:  `<p style="color:#333333">Read <a href="/x" style="color:#0000EE">more</a></p>`,
		},
		{
			name: "bold link",
			src:  `<p style="color:#333333">Read <a href="/x" style="color:#0000EE;text-decoration:none;font-weight:700">more</a></p>`,
		},
		{
			name:    "validation error in red",
			src:     `<div class="field-error" style="color:#CC0000">Bad value</div>`,
			pattern: "form_validation_error",
		},
		{
			name:    "validation error with red border",
			src:     `<div class="is-invalid" style="border-color:#DD0000">Bad value</div>`,
			pattern: "form_validation_error",
		},
		{
			name: "validation error with text",
			src:  `<div class="field-error" style="color:#CC0000">This field is required</div>`,
		},
		{
			name: "validation error with icon",
			src:  `<div class="field-error" style="color:#CC0000"><svg></svg>Bad value</div>`,
		},
		{
			name:    "empty green badge",
			src:     `<span class="badge" style="background-color:#28A745"></span>`,
			pattern: "status_badge",
		},
		{
			name: "labelled badge",
			src:  `<span class="badge" style="background-color:#28A745">Active</span>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := run(t, tt.src, contrast.AA, "color-usage")
			if tt.pattern == "" {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, "color-only-indication", found[0].Type)
			assert.Equal(t, "1.4.1", found[0].WCAGCriterion)
			assert.Equal(t, tt.pattern, found[0].Location["pattern"])
		})
	}
}

func TestColorClassifiers(t *testing.T) {
	assert.True(t, checks.IsErrorColor(color.Resolved("#DC3545")))
	assert.False(t, checks.IsErrorColor(color.Resolved("#333333")))
	assert.False(t, checks.IsErrorColor(color.Transparent))

	for _, c := range []string{"#28A745", "#FFC107", "#DC3545", "#007BFF"} {
		assert.True(t, checks.IsStatusColor(color.Resolved(c)), c)
	}
	assert.False(t, checks.IsStatusColor(color.Resolved("#777777")))
}

func TestTabOrder(t *testing.T) {
	t.Run("tabindex misuse", func(t *testing.T) {
		found := run(t, `<div tabindex="3">a</div><span tabindex="0">b</span><div tabindex="0" role="button">c</div>`,
			contrast.AA, "tab-order")
		assert.Equal(t, []string{"positive-tabindex", "unnecessary-tabindex-zero"}, types(found))
		assert.Equal(t, issues.Critical, found[0].Severity)
		assert.Equal(t, "3", found[0].Location["tabindex"])
		assert.Equal(t, issues.Minor, found[1].Severity)
	})

	t.Run("visual mismatch", func(t *testing.T) {
		found := run(t, `<nav>`+
			`<a id="second" href="#" data-x="100" data-y="0">B</a>`+
			`<a id="first" href="#" data-x="0" data-y="0">A</a>`+
			`</nav>`, contrast.AA, "tab-order")
		require.Len(t, found, 1)
		is := found[0]
		assert.Equal(t, "tab-order-mismatch", is.Type)
		assert.Equal(t, dom.NoNode, is.Element)
		assert.Equal(t, 1, is.Location["mismatches_count"])
		assert.Equal(t, 2, is.Location["total_interactive_elements"])

		pairs, ok := is.Location["mismatches"].([]map[string]any)
		require.True(t, ok)
		require.Len(t, pairs, 1)
		assert.Equal(t, map[string]any{"element": "a#second", "dom_index": 0, "visual_index": 1}, pairs[0]["current_element"])
	})

	t.Run("matching order", func(t *testing.T) {
		found := run(t, `<a href="#" data-x="0" data-y="0">A</a><a href="#" data-x="100" data-y="5">B</a>`,
			contrast.AA, "tab-order")
		assert.Empty(t, found)
	})
}

func TestSelect(t *testing.T) {
	all, err := checks.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(checks.Names()))

	some, err := checks.Select([]string{"tab-order", " color-usage"})
	require.NoError(t, err)
	assert.Equal(t, "tab-order", some[0].Name())
	assert.Equal(t, "color-usage", some[1].Name())

	_, err = checks.Select([]string{"spelling"})
	assert.ErrorContains(t, err, "unknown check")
}
