package surface

// Palette is one of the 16 terminal colors, or Transparent.
type Palette uint8

const (
	Black Palette = iota
	DarkBlue
	DarkGreen
	Teal
	DarkRed
	Magenta
	Olive
	Silver
	Gray
	Blue
	Green
	Aqua
	Red
	Pink
	Yellow
	White
	Transparent
)

// trueColorTag marks an RGB triple in the serialized color encoding.
const trueColorTag = 17

// Color is either a palette entry or a 24-bit RGB value.
type Color struct {
	Palette   Palette
	R, G, B   uint8
	TrueColor bool
}

// RGB creates a true-color value.
func RGB(r, g, b uint8) Color {
	return Color{TrueColor: true, R: r, G: g, B: b}
}

// PaletteColor creates a palette color value.
func PaletteColor(p Palette) Color {
	return Color{Palette: p}
}

// Cell is one character cell of a surface.
type Cell struct {
	Rune  rune
	Flags uint16
	Fg    Color
	Bg    Color
}

// Surface is a fixed-size grid of character cells, the unit of content a
// presentation renders. Cells are stored row-major.
type Surface struct {
	Width  int
	Height int
	Cells  []Cell
}

// At returns the cell at column x, row y. Out-of-range coordinates yield
// a blank cell.
func (s *Surface) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return Cell{Rune: ' '}
	}
	return s.Cells[y*s.Width+x]
}

// New creates a blank surface filled with spaces in the given colors.
func New(width, height int, fg, bg Color) *Surface {
	cells := make([]Cell, width*height)
	for i := range cells {
		cells[i] = Cell{Rune: ' ', Fg: fg, Bg: bg}
	}
	return &Surface{Width: width, Height: height, Cells: cells}
}
