package color

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const lightnessStep = 0.01

// Suggest returns the color closest in lightness to fg that reaches minRatio
// against bg. Hue and saturation are kept; when no lightness works, black or
// white is returned, whichever contrasts more with bg.
func Suggest(fg, bg Resolved, minRatio float64) Resolved {
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}

	base, err := colorful.Hex(string(fg))
	if err != nil {
		return extreme(bg)
	}
	h, s, l := base.Hsl()

	darker, darkOK := walkLightness(h, s, l, -lightnessStep, bg, minRatio)
	lighter, lightOK := walkLightness(h, s, l, lightnessStep, bg, minRatio)

	switch {
	case darkOK && lightOK:
		if math.Abs(darker.l-l) <= math.Abs(lighter.l-l) {
			return darker.c
		}
		return lighter.c
	case darkOK:
		return darker.c
	case lightOK:
		return lighter.c
	}
	return extreme(bg)
}

type candidate struct {
	c Resolved
	l float64
}

func walkLightness(h, s, l, step float64, bg Resolved, minRatio float64) (candidate, bool) {
	for cur := l + step; cur >= 0 && cur <= 1; cur += step {
		c, ok := Normalize(colorful.Hsl(h, s, cur).Clamped().Hex())
		if ok && ContrastRatio(c, bg) >= minRatio {
			return candidate{c: c, l: cur}, true
		}
	}
	return candidate{}, false
}

// extreme picks black or white, whichever contrasts more with bg
func extreme(bg Resolved) Resolved {
	if ContrastRatio(Black, bg) >= ContrastRatio(White, bg) {
		return Black
	}
	return White
}
