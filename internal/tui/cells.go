package tui

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mandelscope/internal/fractal"
)

const halfBlock = "▀"

// Cells renders pb as terminal text. Each character cell shows two pixel
// rows: the upper one as the foreground of "▀" and the lower one as its
// background. Runs of identical cells share one styled span.
func Cells(pb fractal.PixelBuffer) string {
	if pb.Width <= 0 || pb.Height <= 0 {
		return ""
	}

	var b strings.Builder
	for y := 0; y < pb.Height; y += 2 {
		x := 0
		for x < pb.Width {
			top, bottom := cellColors(pb, x, y)
			run := 1
			for x+run < pb.Width {
				t, bt := cellColors(pb, x+run, y)
				if t != top || bt != bottom {
					break
				}
				run++
			}

			style := lipgloss.NewStyle().Foreground(hexColor(top)).Background(hexColor(bottom))
			b.WriteString(style.Render(strings.Repeat(halfBlock, run)))
			x += run
		}
		if y+2 < pb.Height {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// cellColors returns the pixels shown in cell (x, y/2). An odd last row
// has no lower pixel and repeats the upper one.
func cellColors(pb fractal.PixelBuffer, x, y int) (top, bottom color.RGBA) {
	top = pb.RGBAAt(x, y)
	bottom = top
	if y+1 < pb.Height {
		bottom = pb.RGBAAt(x, y+1)
	}
	return top, bottom
}
