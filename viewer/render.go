package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/surfdeck/surfdeck/surface"
)

// ansiIndex maps the surface palette (console order) to ANSI 256 color
// indices.
var ansiIndex = [16]int{
	0,  // Black
	4,  // DarkBlue
	2,  // DarkGreen
	6,  // Teal
	1,  // DarkRed
	5,  // Magenta
	3,  // Olive
	7,  // Silver
	8,  // Gray
	12, // Blue
	10, // Green
	14, // Aqua
	9,  // Red
	13, // Pink
	11, // Yellow
	15, // White
}

func termColor(c surface.Color) lipgloss.TerminalColor {
	if c.TrueColor {
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}
	if c.Palette == surface.Transparent {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(fmt.Sprintf("%d", ansiIndex[c.Palette]))
}

// renderSurface draws the surface clipped to maxWidth x maxHeight.
// Adjacent cells with identical colors share one styled segment.
func renderSurface(s *surface.Surface, maxWidth, maxHeight int) string {
	width := s.Width
	if maxWidth > 0 && maxWidth < width {
		width = maxWidth
	}
	height := s.Height
	if maxHeight > 0 && maxHeight < height {
		height = maxHeight
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		x := 0
		for x < width {
			run := s.At(x, y)
			var seg strings.Builder
			for x < width {
				c := s.At(x, y)
				if c.Fg != run.Fg || c.Bg != run.Bg {
					break
				}
				seg.WriteRune(c.Rune)
				x++
			}
			style := lipgloss.NewStyle().
				Foreground(termColor(run.Fg)).
				Background(termColor(run.Bg))
			b.WriteString(style.Render(seg.String()))
		}
		if y < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
