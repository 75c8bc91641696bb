package canvas

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"artwork-sequencer/pkg/colorutil"
	"artwork-sequencer/pkg/geometry"
)

// digitPatterns contains 3x5 pixel patterns for digits 0-9.
// Each digit is represented as 5 rows of 3 bits.
var digitPatterns = [10][5]uint8{
	{0b111, 0b101, 0b101, 0b101, 0b111}, // 0
	{0b010, 0b110, 0b010, 0b010, 0b111}, // 1
	{0b111, 0b001, 0b111, 0b100, 0b111}, // 2
	{0b111, 0b001, 0b111, 0b001, 0b111}, // 3
	{0b101, 0b101, 0b111, 0b001, 0b001}, // 4
	{0b111, 0b100, 0b111, 0b001, 0b111}, // 5
	{0b111, 0b100, 0b111, 0b101, 0b111}, // 6
	{0b111, 0b001, 0b001, 0b001, 0b001}, // 7
	{0b111, 0b101, 0b111, 0b101, 0b111}, // 8
	{0b111, 0b101, 0b111, 0b001, 0b111}, // 9
}

// letterPatterns contains 3x5 pixel patterns for letters A-Z and the symbols
// artwork ids and numeric labels use.
var letterPatterns = map[rune][5]uint8{
	'A': {0b010, 0b101, 0b111, 0b101, 0b101},
	'B': {0b110, 0b101, 0b110, 0b101, 0b110},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'D': {0b110, 0b101, 0b101, 0b101, 0b110},
	'E': {0b111, 0b100, 0b110, 0b100, 0b111},
	'F': {0b111, 0b100, 0b110, 0b100, 0b100},
	'G': {0b011, 0b100, 0b101, 0b101, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'I': {0b111, 0b010, 0b010, 0b010, 0b111},
	'J': {0b001, 0b001, 0b001, 0b101, 0b010},
	'K': {0b101, 0b101, 0b110, 0b101, 0b101},
	'L': {0b100, 0b100, 0b100, 0b100, 0b111},
	'M': {0b101, 0b111, 0b101, 0b101, 0b101},
	'N': {0b101, 0b111, 0b111, 0b101, 0b101},
	'O': {0b010, 0b101, 0b101, 0b101, 0b010},
	'P': {0b110, 0b101, 0b110, 0b100, 0b100},
	'Q': {0b010, 0b101, 0b101, 0b111, 0b011},
	'R': {0b110, 0b101, 0b110, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'T': {0b111, 0b010, 0b010, 0b010, 0b010},
	'U': {0b101, 0b101, 0b101, 0b101, 0b111},
	'V': {0b101, 0b101, 0b101, 0b101, 0b010},
	'W': {0b101, 0b101, 0b101, 0b111, 0b101},
	'X': {0b101, 0b101, 0b010, 0b101, 0b101},
	'Y': {0b101, 0b101, 0b010, 0b010, 0b010},
	'Z': {0b111, 0b001, 0b010, 0b100, 0b111},
	'?': {0b111, 0b001, 0b010, 0b000, 0b010},
	'#': {0b101, 0b111, 0b101, 0b111, 0b101},
	'+': {0b000, 0b010, 0b111, 0b010, 0b000},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	'_': {0b000, 0b000, 0b000, 0b000, 0b111},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'*': {0b000, 0b101, 0b010, 0b101, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

// glyph returns the 3x5 pattern for ch, and false for characters the marker
// font cannot show. Lowercase letters share the uppercase patterns.
func glyph(ch rune) ([5]uint8, bool) {
	if ch >= '0' && ch <= '9' {
		return digitPatterns[ch-'0'], true
	}
	if ch >= 'a' && ch <= 'z' {
		ch = ch - 'a' + 'A'
	}
	p, ok := letterPatterns[ch]
	return p, ok
}

var (
	stageBackground = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 255}
	selectionColor  = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 255}
	previewBacking  = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 230}
)

const markerFillAlpha = 210

// toPixels converts a display rectangle to raster pixels at scale k.
func toPixels(r geometry.Rect, k float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X*k)),
		int(math.Floor(r.Y*k)),
		int(math.Ceil((r.X+r.Width)*k)),
		int(math.Ceil((r.Y+r.Height)*k)),
	)
}

// drawBase scales src into r.
func drawBase(dst *image.RGBA, src image.Image, r image.Rectangle) {
	if r.Empty() {
		return
	}
	draw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), draw.Src, nil)
}

func fillRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// strokeRect draws an outline of the given width inside r.
func strokeRect(dst *image.RGBA, r image.Rectangle, width int, col color.RGBA) {
	if width <= 0 || r.Empty() {
		return
	}
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), col)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), col)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), col)
	fillRect(dst, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), col)
}

// labelScale picks a glyph scale that fits a 5-row glyph inside r.
func labelScale(r image.Rectangle) int {
	scale := r.Dy() / 7
	if scale < 1 {
		scale = 1
	}
	if scale > 6 {
		scale = 6
	}
	return scale
}

// drawLabel draws label centred in r. Characters without a glyph are
// skipped.
func drawLabel(dst *image.RGBA, label string, r image.Rectangle, col color.RGBA, scale int) {
	runes := []rune(label)
	if len(runes) == 0 {
		return
	}
	charWidth := 3 * scale
	charHeight := 5 * scale
	spacing := scale
	labelWidth := len(runes)*charWidth + (len(runes)-1)*spacing

	centerX := (r.Min.X + r.Max.X) / 2
	centerY := (r.Min.Y + r.Max.Y) / 2
	startX := centerX - labelWidth/2
	startY := centerY - charHeight/2

	bounds := dst.Bounds()
	for i, ch := range runes {
		pattern, ok := glyph(ch)
		if !ok {
			continue
		}
		charX := startX + i*(charWidth+spacing)
		for row := 0; row < 5; row++ {
			for c := 0; c < 3; c++ {
				if pattern[row]&(1<<(2-c)) == 0 {
					continue
				}
				for dy := 0; dy < scale; dy++ {
					for dx := 0; dx < scale; dx++ {
						px := charX + c*scale + dx
						py := startY + row*scale + dy
						if px >= bounds.Min.X && px < bounds.Max.X &&
							py >= bounds.Min.Y && py < bounds.Max.Y {
							dst.Set(px, py, col)
						}
					}
				}
			}
		}
	}
}

// drawPreview draws icon fitted inside r on a light backing with a border.
func drawPreview(dst *image.RGBA, icon image.Image, r image.Rectangle) {
	if r.Empty() {
		return
	}
	fillRect(dst, r, previewBacking)
	if icon != nil {
		ib := icon.Bounds()
		fit := fitInside(ib.Dx(), ib.Dy(), r.Inset(2))
		draw.ApproxBiLinear.Scale(dst, fit, icon, ib, draw.Over, nil)
	}
	strokeRect(dst, r, 1, colorutil.Black)
}

// fitInside centres a w x h box scaled to fit within r.
func fitInside(w, h int, r image.Rectangle) image.Rectangle {
	if w <= 0 || h <= 0 || r.Empty() {
		return r
	}
	s := math.Min(float64(r.Dx())/float64(w), float64(r.Dy())/float64(h))
	fw, fh := int(float64(w)*s), int(float64(h)*s)
	x := r.Min.X + (r.Dx()-fw)/2
	y := r.Min.Y + (r.Dy()-fh)/2
	return image.Rect(x, y, x+fw, y+fh)
}
