// Package visualorder derives a reading order for interactive elements from
// externally supplied bounding boxes and compares it with document order.
package visualorder

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"bennypowers.dev/a11yaudit/internal/dom"
)

// DefaultThreshold is the row grouping tolerance in layout units
const DefaultThreshold = 20.0

// Box is a bounding box in layout units
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PositionedElement is an interactive element with a box
type PositionedElement struct {
	Element dom.NodeID
	Box
	// DOMIndex is the element's position among all interactive elements,
	// fixed before any reordering
	DOMIndex int
}

// Row is a band of elements sharing a vertical position
type Row struct {
	YMin     float64
	YMax     float64
	Elements []PositionedElement
}

// BoundingBox reads data-bda-bbox="x,y,width,height" or the discrete
// data-x, data-y, data-width and data-height attributes. Width and height
// default to 0 in the discrete form.
func BoundingBox(doc *dom.Document, id dom.NodeID) (Box, bool) {
	if v, ok := doc.Attr(id, "data-bda-bbox"); ok {
		parts := strings.Split(v, ",")
		if len(parts) == 4 {
			var f [4]float64
			valid := true
			for i, p := range parts {
				n, ok := parseNumber(p)
				if !ok {
					valid = false
					break
				}
				f[i] = n
			}
			if valid {
				return Box{X: f[0], Y: f[1], Width: f[2], Height: f[3]}, true
			}
		}
	}

	xs, xok := doc.Attr(id, "data-x")
	ys, yok := doc.Attr(id, "data-y")
	if !xok || !yok {
		return Box{}, false
	}
	x, xok := parseNumber(xs)
	y, yok := parseNumber(ys)
	if !xok || !yok {
		return Box{}, false
	}
	box := Box{X: x, Y: y}
	if w, ok := doc.Attr(id, "data-width"); ok {
		if box.Width, ok = parseNumber(w); !ok {
			return Box{}, false
		}
	}
	if h, ok := doc.Attr(id, "data-height"); ok {
		if box.Height, ok = parseNumber(h); !ok {
			return Box{}, false
		}
	}
	return box, true
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Position attaches boxes to elements. Elements without a usable box are
// left out; DOMIndex keeps their original position in elements.
func Position(doc *dom.Document, elements []dom.NodeID) []PositionedElement {
	var out []PositionedElement
	for i, id := range elements {
		box, ok := BoundingBox(doc, id)
		if !ok {
			continue
		}
		out = append(out, PositionedElement{Element: id, Box: box, DOMIndex: i})
	}
	return out
}

// GroupRows makes one greedy pass: each element joins the first row whose
// yMin lies within threshold of its y, widening that row, or opens a new
// row. The result depends on arrival order.
func GroupRows(elements []PositionedElement, threshold float64) []Row {
	var rows []Row
	for _, el := range elements {
		joined := false
		for i := range rows {
			row := &rows[i]
			if math.Abs(el.Y-row.YMin) <= threshold {
				row.Elements = append(row.Elements, el)
				row.YMin = math.Min(row.YMin, el.Y)
				row.YMax = math.Max(row.YMax, el.Y+el.Height)
				joined = true
				break
			}
		}
		if !joined {
			rows = append(rows, Row{
				YMin:     el.Y,
				YMax:     el.Y + el.Height,
				Elements: []PositionedElement{el},
			})
		}
	}
	return rows
}

// Sort returns the canonical visual order: rows top to bottom, elements
// left to right within a row. Both sorts are stable.
func Sort(elements []PositionedElement, threshold float64) []PositionedElement {
	rows := GroupRows(elements, threshold)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].YMin < rows[j].YMin
	})

	out := make([]PositionedElement, 0, len(elements))
	for _, row := range rows {
		sort.SliceStable(row.Elements, func(i, j int) bool {
			return row.Elements[i].X < row.Elements[j].X
		})
		out = append(out, row.Elements...)
	}
	return out
}

// Placement locates an element in both orders
type Placement struct {
	Element     dom.NodeID `json:"-"`
	DOMIndex    int        `json:"dom_index"`
	VisualIndex int        `json:"visual_index"`
}

// Mismatch is an adjacent pair in document order that appears inverted
// visually
type Mismatch struct {
	Current Placement `json:"current_element"`
	Next    Placement `json:"next_element"`
}

// Mismatches compares each positioned element with its document-order
// successor. Only adjacent inversions are reported.
func Mismatches(positioned, visual []PositionedElement) []Mismatch {
	visualIndex := make(map[dom.NodeID]int, len(visual))
	for i, el := range visual {
		visualIndex[el.Element] = i
	}

	var out []Mismatch
	for i := 0; i+1 < len(positioned); i++ {
		cur, next := positioned[i], positioned[i+1]
		ci, ok1 := visualIndex[cur.Element]
		ni, ok2 := visualIndex[next.Element]
		if !ok1 || !ok2 {
			continue
		}
		if ni < ci {
			out = append(out, Mismatch{
				Current: Placement{Element: cur.Element, DOMIndex: cur.DOMIndex, VisualIndex: ci},
				Next:    Placement{Element: next.Element, DOMIndex: next.DOMIndex, VisualIndex: ni},
			})
		}
	}
	return out
}

// Analysis is one pass of the engine over a document
type Analysis struct {
	Interactive []dom.NodeID
	Positioned  []PositionedElement
	Visual      []PositionedElement
	Mismatches  []Mismatch
}

// Analyze collects interactive elements, positions them and compares the
// visual order with document order. Fewer than two positioned elements
// yield no visual order.
func Analyze(doc *dom.Document, threshold float64) Analysis {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	a := Analysis{Interactive: Interactive(doc)}
	a.Positioned = Position(doc, a.Interactive)
	if len(a.Positioned) < 2 {
		return a
	}
	a.Visual = Sort(a.Positioned, threshold)
	a.Mismatches = Mismatches(a.Positioned, a.Visual)
	return a
}
