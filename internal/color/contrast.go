package color

import "math"

// channelLinear applies the sRGB gamma expansion used by WCAG 2.x
func channelLinear(c uint8) float64 {
	v := float64(c) / 255
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// RelativeLuminance returns the WCAG relative luminance of c in [0,1].
// Transparent and non-hex values measure as White, the canvas default.
func RelativeLuminance(c Resolved) float64 {
	r, g, b, ok := c.RGB()
	if !ok {
		r, g, b, _ = White.RGB()
	}
	return 0.2126*channelLinear(r) + 0.7152*channelLinear(g) + 0.0722*channelLinear(b)
}

// ContrastRatio returns (Lmax+0.05)/(Lmin+0.05). It is symmetric in its
// arguments and ranges from 1 to 21.
func ContrastRatio(a, b Resolved) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// RoundRatio rounds a contrast ratio to two decimals for reporting
func RoundRatio(ratio float64) float64 {
	return math.Round(ratio*100) / 100
}
