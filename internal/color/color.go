// Package color normalizes CSS color syntax to canonical sRGB hex and implements
// the WCAG relative luminance and contrast ratio formulas.
package color

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mazznoer/csscolorparser"
)

// Resolved is a canonical color: "#RRGGBB" (upper case) or Transparent.
// It never carries the syntax it was parsed from.
type Resolved string

const (
	// Transparent is the sentinel for a fully transparent color
	Transparent Resolved = "transparent"
	// Black is the initial value of the color property
	Black Resolved = "#000000"
	// White is the canvas color assumed behind the root element
	White Resolved = "#FFFFFF"
)

// IsTransparent reports whether c is the transparent sentinel
func (c Resolved) IsTransparent() bool {
	return c == Transparent
}

// RGB returns the 8-bit channels of c. ok is false for Transparent or
// a value that is not a canonical hex color.
func (c Resolved) RGB() (r, g, b uint8, ok bool) {
	s := string(c)
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

// String implements fmt.Stringer
func (c Resolved) String() string {
	return string(c)
}

// FromRGB builds a canonical hex color from 8-bit channels
func FromRGB(r, g, b uint8) Resolved {
	return Resolved(fmt.Sprintf("#%02X%02X%02X", r, g, b))
}

// Parser normalizes color values. The zero value only accepts the fixed
// syntaxes: hex, rgb(a), hsl(a) and the CSS1 named colors.
type Parser struct {
	// Extended retries values the fixed syntaxes reject with a full CSS
	// color parser (every CSS named color, hwb(), etc.). Alpha is dropped.
	Extended bool
}

// Normalize parses raw with the fixed syntaxes only.
// The second result is false when the value is undetermined.
func Normalize(raw string) (Resolved, bool) {
	return Parser{}.Normalize(raw)
}

// Normalize parses raw into a canonical color. ok is false when the color
// is undetermined: unparseable, or a keyword such as inherit or currentcolor.
// An undetermined color must never be read as black.
func (p Parser) Normalize(raw string) (Resolved, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	v = strings.TrimSpace(strings.TrimSuffix(v, "!important"))
	if v == "" {
		return "", false
	}

	if hex, known := namedColors[v]; known {
		if hex == "" {
			return "", false
		}
		return hex, true
	}

	switch {
	case strings.HasPrefix(v, "#"):
		if c, ok := parseHex(v[1:]); ok {
			return c, true
		}
	case strings.HasPrefix(v, "rgb"):
		if c, ok := parseRGB(v); ok {
			return c, true
		}
	case strings.HasPrefix(v, "hsl"):
		if c, ok := parseHSL(v); ok {
			return c, true
		}
	}

	if p.Extended {
		return parseExtended(v)
	}
	return "", false
}

func parseHex(digits string) (Resolved, bool) {
	for _, ch := range digits {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return "", false
		}
	}
	switch len(digits) {
	case 3:
		r, g, b := digits[0], digits[1], digits[2]
		return Resolved(strings.ToUpper("#" + string([]byte{r, r, g, g, b, b}))), true
	case 6:
		return Resolved(strings.ToUpper("#" + digits)), true
	case 8:
		return Resolved(strings.ToUpper("#" + digits[:6])), true
	}
	return "", false
}

var funcPattern = regexp.MustCompile(`^(rgba?|hsla?)\(\s*([^()]*)\)$`)

// functionArgs splits the arguments of rgb()/hsl() in either the legacy comma
// form or the space form with an optional "/ alpha".
func functionArgs(v string) (name string, args []string, ok bool) {
	m := funcPattern.FindStringSubmatch(v)
	if m == nil {
		return "", nil, false
	}
	fields := strings.FieldsFunc(m[2], func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '\t' || r == '\n'
	})
	return m[1], fields, true
}

func parseRGB(v string) (Resolved, bool) {
	_, args, ok := functionArgs(v)
	if !ok || (len(args) != 3 && len(args) != 4) {
		return "", false
	}
	var ch [3]uint8
	for i := range 3 {
		n, ok := channel(args[i])
		if !ok {
			return "", false
		}
		ch[i] = n
	}
	if len(args) == 4 {
		if _, err := strconv.ParseFloat(strings.TrimSuffix(args[3], "%"), 64); err != nil {
			return "", false
		}
	}
	return FromRGB(ch[0], ch[1], ch[2]), true
}

// channel parses one rgb() component, clamped to 0-255
func channel(s string) (uint8, bool) {
	percent := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	if percent {
		f = f * 255 / 100
	}
	return uint8(math.Round(math.Max(0, math.Min(255, f)))), true
}

func parseHSL(v string) (Resolved, bool) {
	_, args, ok := functionArgs(v)
	if !ok || (len(args) != 3 && len(args) != 4) {
		return "", false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return "", false
	}
	s, err := strconv.ParseFloat(strings.TrimSuffix(args[1], "%"), 64)
	if err != nil {
		return "", false
	}
	l, err := strconv.ParseFloat(strings.TrimSuffix(args[2], "%"), 64)
	if err != nil {
		return "", false
	}
	if len(args) == 4 {
		if _, err := strconv.ParseFloat(strings.TrimSuffix(args[3], "%"), 64); err != nil {
			return "", false
		}
	}
	r, g, b := hslToRGB(h, clamp01(s/100), clamp01(l/100))
	return FromRGB(r, g, b), true
}

func clamp01(f float64) float64 {
	return math.Max(0, math.Min(1, f))
}

// hslToRGB converts hue in degrees and saturation/lightness fractions.
// Channels are truncated, not rounded.
func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	h /= 360

	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	r := hueToRGB(p, q, h+1.0/3)
	g := hueToRGB(p, q, h)
	b := hueToRGB(p, q, h-1.0/3)
	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

func parseExtended(v string) (Resolved, bool) {
	c, err := csscolorparser.Parse(v)
	if err != nil {
		return "", false
	}
	if c.A == 0 {
		return Transparent, true
	}
	return FromRGB(unit255(c.R), unit255(c.G), unit255(c.B)), true
}

func unit255(f float64) uint8 {
	return uint8(math.Round(clamp01(f) * 255))
}
