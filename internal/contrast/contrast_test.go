package contrast_test

import (
	"testing"

	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/parser/html"
	"bennypowers.dev/a11yaudit/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// #949494 on white measures 3.03:1
const grey = "#949494"

func TestLargeTextThreshold(t *testing.T) {
	h1 := contrast.Compare(grey, color.White, contrast.IsLargeText("h1", "16px", "normal"), contrast.AA)
	assert.True(t, h1.IsLargeText)
	assert.Equal(t, 3.0, h1.RequiredRatio)
	assert.True(t, h1.Passes)

	span := contrast.Compare(grey, color.White, contrast.IsLargeText("span", "16px", "normal"), contrast.AA)
	assert.False(t, span.IsLargeText)
	assert.Equal(t, 4.5, span.RequiredRatio)
	assert.False(t, span.Passes)
}

func TestThresholds(t *testing.T) {
	tests := []struct {
		level  contrast.Level
		normal float64
		large  float64
		crit   string
	}{
		{contrast.AA, 4.5, 3.0, "1.4.3"},
		{contrast.AAA, 7.0, 4.5, "1.4.6"},
		{contrast.NonText, 3.0, 3.0, "1.4.11"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			assert.Equal(t, tt.normal, tt.level.Required(false))
			assert.Equal(t, tt.large, tt.level.Required(true))
			assert.Equal(t, tt.crit, tt.level.Threshold().Criterion)
		})
	}
}

func TestIsLargeText(t *testing.T) {
	tests := []struct {
		name   string
		tag    string
		size   string
		weight string
		want   bool
	}{
		{"h2 by tag", "h2", "12px", "normal", true},
		{"h4 is not", "h4", "16px", "normal", false},
		{"24px", "p", "24px", "normal", true},
		{"19pt", "p", "19pt", "normal", true},
		{"1.5em", "p", "1.5em", "normal", true},
		{"19px bold", "p", "19px", "bold", true},
		{"19px 700", "p", "19px", "700", true},
		{"19px strong", "strong", "19px", "normal", true},
		{"19px normal", "p", "19px", "normal", false},
		{"keyword size", "p", "large", "bold", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contrast.IsLargeText(tt.tag, tt.size, tt.weight))
		})
	}
}

func TestFontSizePx(t *testing.T) {
	px, ok := contrast.FontSizePx("12pt")
	require.True(t, ok)
	assert.InDelta(t, 15.996, px, 0.001)

	_, ok = contrast.FontSizePx("120%")
	assert.False(t, ok)
}

func TestParseLevel(t *testing.T) {
	l, err := contrast.ParseLevel("aaa")
	require.NoError(t, err)
	assert.Equal(t, contrast.AAA, l)

	_, err = contrast.ParseLevel("A")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "4.47:1", contrast.FormatRatio(4.4749))
	assert.Equal(t, "4.5:1", contrast.FormatRequired(4.5))
	assert.Equal(t, "3:1", contrast.FormatRequired(3.0))
}

func TestEvaluate(t *testing.T) {
	doc, err := html.Parse([]byte(`
<p id="a" style="color:#777777;background-color:#FFFFFF">grey</p>
<h1 id="b" style="color:#777777;background-color:#FFFFFF">grey</h1>
<p id="c" style="color:var(--fg)">unknown</p>
<p id="d">plain</p>`))
	require.NoError(t, err)
	ev := contrast.NewEvaluator(style.New(doc), contrast.AAA)

	el := func(id string) contrast.Evaluation {
		n, ok := doc.ElementByID(id)
		require.True(t, ok)
		return ev.Evaluate(n)
	}

	p := el("a")
	require.Equal(t, contrast.Measured, p.Status)
	assert.InDelta(t, 4.47, p.AA.Ratio, 0.01)
	assert.False(t, p.AA.Passes)
	require.NotNil(t, p.AAA)
	assert.False(t, p.AAA.Passes)

	h1 := el("b")
	assert.True(t, h1.LargeText)
	assert.True(t, h1.AA.Passes)

	assert.Equal(t, contrast.Potential, el("c").Status)
	assert.Equal(t, contrast.Measured, el("d").Status)
}

func TestEvaluateNonText(t *testing.T) {
	doc, err := html.Parse([]byte(`
<div style="background:#ffffff">
  <button id="b" style="border:1px solid #dddddd">Go</button>
  <svg id="s" fill="#000000" stroke="none"></svg>
</div>`))
	require.NoError(t, err)
	ev := contrast.NewEvaluator(style.New(doc), contrast.AA)

	b, _ := doc.ElementByID("b")
	results := ev.EvaluateNonText(b)
	require.Len(t, results, 1)
	assert.Equal(t, "border-color", results[0].Property)
	assert.Equal(t, color.White, results[0].Adjacent)
	assert.False(t, results[0].Passes)

	s, _ := doc.ElementByID("s")
	results = ev.EvaluateNonText(s)
	require.Len(t, results, 1)
	assert.Equal(t, "fill", results[0].Property)
	assert.True(t, results[0].Passes)
}
