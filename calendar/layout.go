package calendar

// Offset is a glyph position relative to its cell center.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// layouts[n-1] places n glyphs, in fractions of the cell with the center at 0.
var layouts = [][]Offset{
	{{0, 0}},
	{{-0.25, 0}, {0.25, 0}},
	{{0, -0.2}, {-0.2, 0.2}, {0.2, 0.2}},
	{{-0.25, -0.25}, {-0.25, 0.25}, {0.25, -0.25}, {0.25, 0.25}},
}

// MaxGlyphs is the largest glyph count a cell can lay out.
var MaxGlyphs = len(layouts)

// Layout returns the fractional positions for n glyphs. Counts without a
// layout return nil and draw nothing.
func Layout(n int) []Offset {
	if n < 1 || n > len(layouts) {
		return nil
	}
	return layouts[n-1]
}

// LinearMap maps v from domain onto rng, without clamping.
func LinearMap(v float64, domain, rng [2]float64) float64 {
	span := domain[1] - domain[0]
	if span == 0 {
		if v <= domain[0] {
			return rng[0]
		}
		return rng[1]
	}
	return (v-domain[0])/span*(rng[1]-rng[0]) + rng[0]
}

// headerHeight is the band at the top of a cell reserved for the day number.
const headerHeight = 20

// Place converts Layout(n) to pixel offsets for a cell of the given size.
// Glyphs are laid out below the day-number band.
func Place(n int, cellWidth, cellHeight float64) []Offset {
	fractions := Layout(n)
	if fractions == nil {
		return nil
	}
	unit := [2]float64{-0.5, 0.5}
	out := make([]Offset, len(fractions))
	for i, f := range fractions {
		out[i] = Offset{
			X: LinearMap(f.X, unit, [2]float64{-cellWidth / 2, cellWidth / 2}),
			Y: LinearMap(f.Y, unit, [2]float64{-cellHeight/2 + headerHeight, cellHeight / 2}),
		}
	}
	return out
}
