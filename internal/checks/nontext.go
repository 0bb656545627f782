package checks

import (
	"strings"

	"bennypowers.dev/a11yaudit/internal/collections"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/issues"
)

var (
	// controlTags draw borders and outlines users must perceive
	controlTags = collections.NewSet("button", "input", "select", "textarea")
	// graphicTags are SVG icons and their shapes
	graphicTags = collections.NewSet("svg", "path", "circle", "rect", "ellipse", "line", "polyline", "polygon")
)

// NonTextContrast reports form controls and icons below 3:1 against their
// surroundings (1.4.11)
type NonTextContrast struct{}

func (NonTextContrast) Name() string { return "non-text-contrast" }

func (NonTextContrast) Run(ctx *Context) {
	ev := contrast.NewEvaluator(ctx.Resolver, contrast.NonText)
	for _, id := range ctx.Doc.Elements() {
		tag := ctx.Doc.Tag(id)
		var typ string
		switch {
		case controlTags.Has(tag):
			if t, _ := ctx.Doc.Attr(id, "type"); strings.EqualFold(t, "hidden") {
				continue
			}
			typ = "insufficient-ui-component-contrast"
		case graphicTags.Has(tag):
			typ = "insufficient-icon-contrast"
		default:
			continue
		}

		for _, res := range ev.EvaluateNonText(id) {
			if res.Passes {
				continue
			}
			// controls are judged on their edges, graphics on their paint
			isPaint := res.Property == "fill" || res.Property == "stroke"
			if isPaint != (typ == "insufficient-icon-contrast") {
				continue
			}
			key := strings.TrimSuffix(res.Property, "-color") + "_color"
			ctx.report(id, typ, "1.4.11", issues.Major, map[string]any{
				key:              res.Foreground.String(),
				"adjacent_color": res.Adjacent.String(),
				"contrast_ratio": contrast.FormatRatio(res.Ratio),
				"required_ratio": contrast.FormatRequired(res.RequiredRatio),
				"property":       res.Property,
			}, "Insufficient %s contrast: %s against adjacent %s (minimum required: %s)",
				res.Property, contrast.FormatRatio(res.Ratio), res.Adjacent, contrast.FormatRequired(res.RequiredRatio))
		}
	}
}
