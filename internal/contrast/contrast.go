// Package contrast applies the WCAG contrast thresholds to resolved color
// pairs for text and for non-text user interface parts.
package contrast

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bennypowers.dev/a11yaudit/internal/color"
)

// Level selects a threshold table
type Level string

const (
	// AA is success criterion 1.4.3
	AA Level = "AA"
	// AAA is success criterion 1.4.6
	AAA Level = "AAA"
	// NonText is success criterion 1.4.11
	NonText Level = "non-text"
)

// Threshold is the required ratio for normal and large text at one level
type Threshold struct {
	Normal    float64
	Large     float64
	Criterion string
}

var thresholds = map[Level]Threshold{
	AA:      {Normal: 4.5, Large: 3.0, Criterion: "1.4.3"},
	AAA:     {Normal: 7.0, Large: 4.5, Criterion: "1.4.6"},
	NonText: {Normal: 3.0, Large: 3.0, Criterion: "1.4.11"},
}

// ParseLevel accepts AA or AAA, case-insensitively
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "AA", "":
		return AA, nil
	case "AAA":
		return AAA, nil
	}
	return "", fmt.Errorf("unknown contrast level %q", s)
}

// Threshold returns the thresholds for l; unknown levels get AA's
func (l Level) Threshold() Threshold {
	if t, ok := thresholds[l]; ok {
		return t
	}
	return thresholds[AA]
}

// Required returns the minimum ratio at l
func (l Level) Required(large bool) float64 {
	t := l.Threshold()
	if large {
		return t.Large
	}
	return t.Normal
}

// Result is the outcome of one color pair at one level
type Result struct {
	Foreground    color.Resolved
	Background    color.Resolved
	Ratio         float64
	RequiredRatio float64
	IsLargeText   bool
	Passes        bool
	Level         Level
	Criterion     string
}

// Compare measures fg against bg at level
func Compare(fg, bg color.Resolved, large bool, level Level) Result {
	ratio := color.ContrastRatio(fg, bg)
	required := level.Required(large)
	return Result{
		Foreground:    fg,
		Background:    bg,
		Ratio:         ratio,
		RequiredRatio: required,
		IsLargeText:   large,
		Passes:        ratio >= required,
		Level:         level,
		Criterion:     level.Threshold().Criterion,
	}
}

// FormatRatio renders a ratio the way issue locations carry it, e.g. "4.47:1"
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("%.2f:1", ratio)
}

// FormatRequired renders a threshold, e.g. "4.5:1"
func FormatRequired(ratio float64) string {
	return strconv.FormatFloat(ratio, 'f', -1, 64) + ":1"
}

const (
	largePx     = 24.0
	largeBoldPx = 18.67
	pxPerPt     = 1.333
	pxPerEm     = 16.0
)

var fontSizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)(px|pt|em|rem)$`)

// FontSizePx converts a font-size to pixels. Keywords, percentages and
// other units are not converted.
func FontSizePx(raw string) (float64, bool) {
	m := fontSizePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(raw)))
	if m == nil {
		return 0, false
	}
	size, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "pt":
		size *= pxPerPt
	case "em", "rem":
		size *= pxPerEm
	}
	return size, true
}

// IsBold reports whether a font-weight value or the tag renders bold
func IsBold(weight, tag string) bool {
	switch tag {
	case "b", "strong":
		return true
	}
	switch w := strings.ToLower(strings.TrimSpace(weight)); w {
	case "bold", "bolder":
		return true
	default:
		n, err := strconv.Atoi(w)
		return err == nil && n >= 700
	}
}

// IsLargeText classifies text size. h1 to h3 are large by tag alone,
// whatever their rendered size.
func IsLargeText(tag, fontSize, fontWeight string) bool {
	switch tag {
	case "h1", "h2", "h3":
		return true
	}
	px, ok := FontSizePx(fontSize)
	if !ok {
		return false
	}
	if px >= largePx {
		return true
	}
	return px >= largeBoldPx && IsBold(fontWeight, tag)
}
