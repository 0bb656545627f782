package remediate

import (
	"fmt"

	"bennypowers.dev/a11yaudit/internal/color"
	"bennypowers.dev/a11yaudit/internal/contrast"
	"bennypowers.dev/a11yaudit/internal/dom"
	"bennypowers.dev/a11yaudit/internal/parser/css"
	"bennypowers.dev/a11yaudit/internal/style"
)

// setInline rewrites one property of the element's style attribute
func setInline(doc *dom.Document, id dom.NodeID, property, value string) {
	current, _ := doc.Attr(id, "style")
	decls := css.Set(css.ParseDeclarations(current), property, value)
	doc.SetAttr(id, "style", css.Serialize(decls))
}

// FixTextContrast gives id an inline text color that meets the level's
// threshold against its background. It reports false when the element
// already passes or its colors are undetermined.
func FixTextContrast(r *style.Resolver, id dom.NodeID, level contrast.Level) (Change, bool) {
	ev := contrast.NewEvaluator(r, level).Evaluate(id)
	if ev.Status != contrast.Measured {
		return Change{}, false
	}
	result := ev.AA
	if level == contrast.AAA && ev.AAA != nil {
		result = *ev.AAA
	}
	if result.Passes {
		return Change{}, false
	}

	doc := r.Document()
	suggestion := color.Suggest(ev.Foreground, ev.Background, result.RequiredRatio)
	setInline(doc, id, "color", suggestion.String())
	return Change{
		Type:        TextColorAdjusted,
		Element:     doc.Identifier(id),
		ElementType: doc.Tag(id),
		OldValue:    ev.Foreground.String(),
		NewValue:    suggestion.String(),
		Reason: fmt.Sprintf("Text contrast %s against %s is below %s",
			contrast.FormatRatio(result.Ratio), ev.Background, contrast.FormatRequired(result.RequiredRatio)),
	}, true
}

var nonTextChanges = map[string]ChangeType{
	"border-color":  BorderColorAdjusted,
	"outline-color": OutlineColorAdjusted,
	"fill":          FillAdjusted,
	"stroke":        StrokeAdjusted,
}

// FixNonTextContrast adjusts every failing border, outline, fill or stroke
// color of id against the adjacent color. SVG presentation attributes are
// rewritten in place; everything else goes to the style attribute.
func FixNonTextContrast(r *style.Resolver, id dom.NodeID) []Change {
	doc := r.Document()
	var changes []Change
	for _, res := range contrast.NewEvaluator(r, contrast.AA).EvaluateNonText(id) {
		if res.Passes {
			continue
		}
		suggestion := color.Suggest(res.Foreground, res.Adjacent, res.RequiredRatio)

		_, declared := r.Declared(id, res.Property)
		if !declared && (res.Property == "fill" || res.Property == "stroke") {
			doc.SetAttr(id, res.Property, suggestion.String())
			if res.Property == "stroke" && !doc.HasAttr(id, "stroke-width") {
				doc.SetAttr(id, "stroke-width", "2")
			}
		} else {
			setInline(doc, id, res.Property, suggestion.String())
		}

		changes = append(changes, Change{
			Type:        nonTextChanges[res.Property],
			Element:     doc.Identifier(id),
			ElementType: doc.Tag(id),
			OldValue:    res.Foreground.String(),
			NewValue:    suggestion.String(),
			Reason: fmt.Sprintf("%s contrast %s against adjacent %s is below 3:1",
				res.Property, contrast.FormatRatio(res.Ratio), res.Adjacent),
		})
	}
	return changes
}
