package checks

import (
	"strings"

	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/issues"
)

// TextTags are the elements whose text is measured
var TextTags = []string{
	"p", "h1", "h2", "h3", "h4", "h5", "h6",
	"a", "span", "div", "li", "td", "th", "label", "button",
}

// ColorContrast reports text that does not meet 1.4.3, and 1.4.6 when the
// context asks for AAA
type ColorContrast struct{}

func (ColorContrast) Name() string { return "color-contrast" }

func (ColorContrast) Run(ctx *Context) {
	ev := contrast.NewEvaluator(ctx.Resolver, ctx.Level)
	for _, id := range ctx.Doc.ElementsByTag(TextTags...) {
		if strings.TrimSpace(ctx.Doc.Text(id)) == "" {
			continue
		}

		res := ev.Evaluate(id)
		switch res.Status {
		case contrast.Skipped:
			continue
		case contrast.Potential:
			ctx.report(id, "potential-color-contrast-issue", "1.4.3", issues.Minor, nil,
				"Potential color contrast issue - colors could not be determined automatically")
			continue
		}

		if !res.AA.Passes {
			ctx.report(id, "insufficient-color-contrast", "1.4.3", issues.Major, location(res.AA),
				"Insufficient color contrast: %s (minimum required: %s)",
				contrast.FormatRatio(res.AA.Ratio), contrast.FormatRequired(res.AA.RequiredRatio))
			continue
		}
		if res.AAA != nil && !res.AAA.Passes {
			ctx.report(id, "insufficient-color-contrast-aaa", "1.4.6", issues.Minor, location(*res.AAA),
				"Color contrast %s does not meet enhanced contrast (minimum required: %s)",
				contrast.FormatRatio(res.AAA.Ratio), contrast.FormatRequired(res.AAA.RequiredRatio))
		}
	}
}

func location(r contrast.Result) map[string]any {
	return map[string]any{
		"text_color":       r.Foreground.String(),
		"background_color": r.Background.String(),
		"contrast_ratio":   contrast.FormatRatio(r.Ratio),
		"required_ratio":   contrast.FormatRequired(r.RequiredRatio),
		"is_large_text":    r.IsLargeText,
	}
}
