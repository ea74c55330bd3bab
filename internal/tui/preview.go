package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"imgedit/internal/imaging"

	"github.com/charmbracelet/lipgloss"
)

// renderHalfBlocks draws img with one terminal cell per two vertical pixels:
// the upper pixel is the foreground of "▀" and the lower one its background.
// In ASCII mode each cell is a blank painted with the upper pixel.
func renderHalfBlocks(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	ascii := glyphs() == glyphSetASCII
	step := 2
	if ascii {
		step = 1
	}
	var out strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += step {
		if y > b.Min.Y {
			out.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hexColor(img.At(x, y))
			st := lipgloss.NewStyle()
			if ascii {
				out.WriteString(st.Background(top).Render(" "))
				continue
			}
			st = st.Foreground(top)
			if y+1 < b.Max.Y {
				st = st.Background(hexColor(img.At(x, y+1)))
			}
			out.WriteString(st.Render("▀"))
		}
	}
	return out.String()
}

func hexColor(c color.Color) lipgloss.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B))
}

// previewCache holds the last rendered preview so View stays cheap.
type previewCache struct {
	snapshotID string
	w, h       int
	rendered   string
	glyphs     glyphSet
}

func (c *previewCache) render(s *imaging.Snapshot, w, h int) string {
	if s == nil || !s.Valid() || w <= 0 || h <= 0 {
		return ""
	}
	gs := glyphs()
	if c.snapshotID == s.ID && c.w == w && c.h == h && c.glyphs == gs {
		return c.rendered
	}
	ph := h * 2
	if gs == glyphSetASCII {
		ph = h
	}
	c.snapshotID, c.w, c.h, c.glyphs = s.ID, w, h, gs
	c.rendered = renderHalfBlocks(imaging.Preview(*s, w, ph))
	return c.rendered
}
