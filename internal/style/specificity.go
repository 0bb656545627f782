package style

import (
	"fmt"
	"regexp"
)

// Specificity is a three-bucket selector weight. Combinators and :not()
// arguments are counted as written, so this is an approximation of the
// CSS algorithm, not an implementation of it.
type Specificity struct {
	IDs      int
	Classes  int
	Elements int
}

var (
	idPattern            = regexp.MustCompile(`#[\w-]+`)
	classPattern         = regexp.MustCompile(`\.[\w-]+`)
	attributePattern     = regexp.MustCompile(`\[[^\]]*\]`)
	pseudoPattern        = regexp.MustCompile(`::?[\w-]+(\([^)]*\))?`)
	elementPattern       = regexp.MustCompile(`(?i)\b[a-z][\w-]*`)
	idOrClassPattern     = regexp.MustCompile(`[.#][\w-]+`)
	pseudoElementPattern = regexp.MustCompile(`^::`)
)

// SpecificityOf computes the specificity of selector text. Every
// pseudo-class weighs as a class; ids and classes inside functional
// arguments are counted on top.
func SpecificityOf(selector string) Specificity {
	var s Specificity
	s.Classes = len(attributePattern.FindAllString(selector, -1))
	rest := attributePattern.ReplaceAllString(selector, " ")

	s.IDs = len(idPattern.FindAllString(rest, -1))
	s.Classes += len(classPattern.FindAllString(rest, -1))

	for _, m := range pseudoPattern.FindAllString(rest, -1) {
		if pseudoElementPattern.MatchString(m) {
			s.Elements++
		} else {
			s.Classes++
		}
	}

	rest = pseudoPattern.ReplaceAllString(rest, " ")
	rest = idOrClassPattern.ReplaceAllString(rest, " ")
	s.Elements += len(elementPattern.FindAllString(rest, -1))
	return s
}

// Compare orders specificities lexicographically by ids, classes, elements
func (s Specificity) Compare(o Specificity) int {
	switch {
	case s.IDs != o.IDs:
		return cmpInt(s.IDs, o.IDs)
	case s.Classes != o.Classes:
		return cmpInt(s.Classes, o.Classes)
	default:
		return cmpInt(s.Elements, o.Elements)
	}
}

// Weight is the 100/10/1 sum used in reports
func (s Specificity) Weight() int {
	return s.IDs*100 + s.Classes*10 + s.Elements
}

func (s Specificity) String() string {
	return fmt.Sprintf("(%d,%d,%d)", s.IDs, s.Classes, s.Elements)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
