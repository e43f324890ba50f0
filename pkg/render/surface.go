// Package render owns the raster surfaces behind <canvas> elements.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Default canvas dimensions when the element carries no width/height.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Largest surface NewSurface allocates, per side and in total pixels.
const (
	MaxSide = 32767
	MaxArea = 16384 * 16384
)

// ErrTooLarge is returned for sizes past MaxSide or MaxArea.
var ErrTooLarge = errors.New("surface too large")

// Surface is a 2D drawing surface. It starts fully transparent.
type Surface struct {
	context *gg.Context
}

// NewSurface returns a surface of the given size. Non-positive sizes fall
// back to the canvas defaults.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	if width > MaxSide || height > MaxSide || int64(width)*int64(height) > MaxArea {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, width, height)
	}
	dc := gg.NewContext(width, height)
	dc.SetFontFace(basicfont.Face7x13)
	return &Surface{context: dc}, nil
}

func (s *Surface) Width() int  { return s.context.Width() }
func (s *Surface) Height() int { return s.context.Height() }

// FillRect paints a filled rectangle.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	s.context.SetColor(c)
	s.context.DrawRectangle(x, y, w, h)
	s.context.Fill()
}

// FillText draws text with its alphabetic baseline at y.
func (s *Surface) FillText(text string, x, y float64, c color.Color) {
	s.context.SetColor(c)
	s.context.DrawString(text, x, y)
}

// Image returns the backing image. It aliases the surface.
func (s *Surface) Image() image.Image {
	return s.context.Image()
}

func (s *Surface) EncodePNG(w io.Writer) error {
	return s.context.EncodePNG(w)
}

func (s *Surface) SavePNG(filename string) error {
	return s.context.SavePNG(filename)
}

// PNG returns the surface encoded as PNG bytes.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stack lays surfaces out top to bottom on a white sheet separated by gap
// pixels. An empty list yields a 1x1 white image.
func Stack(surfaces []*Surface, gap int) *image.NRGBA {
	width, height := 1, 0
	for i, s := range surfaces {
		if s.Width() > width {
			width = s.Width()
		}
		height += s.Height()
		if i > 0 {
			height += gap
		}
	}
	if height == 0 {
		height = 1
	}
	sheet := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	y := 0
	for _, s := range surfaces {
		r := image.Rect(0, y, s.Width(), y+s.Height())
		draw.Draw(sheet, r, s.Image(), image.Point{}, draw.Over)
		y += s.Height() + gap
	}
	return sheet
}

// WritePNG encodes any image as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
