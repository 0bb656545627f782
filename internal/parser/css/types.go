package css

import "strings"

// Declaration is one property: value pair of a declaration block
type Declaration struct {
	// Property is the lower-case property name
	Property string
	// Value is the trimmed value without any !important flag
	Value     string
	Important bool
	// Derived marks longhands expanded from a shorthand; they are not
	// written back by Serialize
	Derived bool
}

// Rule is a rule set as written: the selector list is kept verbatim,
// comma lists are not split.
type Rule struct {
	Selector     string
	Declarations []Declaration
	// Line is the 1-based line of the rule within its stylesheet text
	Line uint
}

// Properties folds the declarations into a map; later declarations win
func (r Rule) Properties() map[string]string {
	return Fold(r.Declarations)
}

// Fold folds declarations into a property map; later declarations win
func Fold(decls []Declaration) map[string]string {
	props := make(map[string]string, len(decls))
	for _, d := range decls {
		props[d.Property] = d.Value
	}
	return props
}

// Serialize writes authored declarations back as style attribute text
func Serialize(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.Derived {
			continue
		}
		v := d.Property + ": " + d.Value
		if d.Important {
			v += " !important"
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "; ") + ";"
}

// Set replaces every authored declaration of property with one carrying
// value, appended last so it wins. Derived longhands of the same property
// are dropped too.
func Set(decls []Declaration, property, value string) []Declaration {
	out := make([]Declaration, 0, len(decls)+1)
	for _, d := range decls {
		if d.Property != property {
			out = append(out, d)
		}
	}
	return append(out, Declaration{Property: property, Value: value})
}
