package color

// namedColors is the fixed CSS1 keyword table. An empty value marks a keyword
// that never resolves to a concrete color.
var namedColors = map[string]Resolved{
	"black":        "#000000",
	"white":        "#FFFFFF",
	"red":          "#FF0000",
	"green":        "#008000",
	"blue":         "#0000FF",
	"yellow":       "#FFFF00",
	"orange":       "#FFA500",
	"purple":       "#800080",
	"gray":         "#808080",
	"grey":         "#808080",
	"silver":       "#C0C0C0",
	"navy":         "#000080",
	"teal":         "#008080",
	"maroon":       "#800000",
	"aqua":         "#00FFFF",
	"lime":         "#00FF00",
	"fuchsia":      "#FF00FF",
	"olive":        "#808000",
	"transparent":  Transparent,
	"inherit":      "",
	"initial":      "",
	"unset":        "",
	"currentcolor": "",
}
