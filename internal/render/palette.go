package render

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
)

// paletteNames is the colour cycle, in order.
var paletteNames = []string{
	"red", "blue", "green", "purple", "orange", "brown", "cyan", "magenta", "gray",
}

// Palette hands out series colours in a fixed cycle.
// A Palette is not safe for concurrent use.
type Palette struct {
	next int
}

// NewPalette returns a Palette positioned at the first colour.
func NewPalette() *Palette {
	return &Palette{}
}

// Next returns the next colour name and value, wrapping after the last one.
func (p *Palette) Next() (string, color.RGBA) {
	name := paletteNames[p.next%len(paletteNames)]
	p.next++
	return name, colornames.Map[name]
}

// Reset rewinds the palette to the first colour.
func (p *Palette) Reset() {
	p.next = 0
}

// hex formats c as "#rrggbb".
func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
