package overlay

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph   = ' '
	lastGlyph    = '~'
	glyphCount   = lastGlyph - firstGlyph + 1
	solidCell    = glyphCount // Fully lit cell used for solid quads
	atlasColumns = 16
)

// Atlas is a single-channel sheet of the printable ASCII glyphs of
// basicfont.Face7x13, plus one solid cell so text and panels share a texture.
type Atlas struct {
	Image  *image.Gray
	GlyphW int
	GlyphH int
}

// NewAtlas rasterizes the glyph sheet.
func NewAtlas() *Atlas {
	face := basicfont.Face7x13
	a := &Atlas{GlyphW: face.Advance, GlyphH: face.Height}

	rows := int(glyphCount+atlasColumns) / atlasColumns
	a.Image = image.NewGray(image.Rect(0, 0, atlasColumns*a.GlyphW, rows*a.GlyphH))

	d := &font.Drawer{Dst: a.Image, Src: image.White, Face: face}
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		x, y := a.cellOrigin(int(r - firstGlyph))
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(r))
	}

	x0, y0 := a.cellOrigin(solidCell)
	for y := y0; y < y0+a.GlyphH; y++ {
		for x := x0; x < x0+a.GlyphW; x++ {
			a.Image.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return a
}

func (a *Atlas) cellOrigin(cell int) (int, int) {
	return (cell % atlasColumns) * a.GlyphW, (cell / atlasColumns) * a.GlyphH
}

func (a *Atlas) cellUV(cell int) (u0, v0, u1, v1 float32) {
	x, y := a.cellOrigin(cell)
	w := float32(a.Image.Bounds().Dx())
	h := float32(a.Image.Bounds().Dy())
	return float32(x) / w, float32(y) / h, float32(x+a.GlyphW) / w, float32(y+a.GlyphH) / h
}

// GlyphUV returns the texture rectangle of r. Runes outside printable
// ASCII render as '?'.
func (a *Atlas) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = '?'
	}
	return a.cellUV(int(r - firstGlyph))
}

// SolidUV returns a point inside the solid cell.
func (a *Atlas) SolidUV() (u, v float32) {
	u0, v0, u1, v1 := a.cellUV(solidCell)
	return (u0 + u1) / 2, (v0 + v1) / 2
}

// MeasureText returns the width and height of rendered text.
func (a *Atlas) MeasureText(text string, scale float32) (float32, float32) {
	lines := strings.Split(text, "\n")
	longest := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > longest {
			longest = n
		}
	}
	return float32(longest*a.GlyphW) * scale, float32(len(lines)*a.GlyphH) * scale
}
