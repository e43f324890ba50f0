package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestCompareIdentical(t *testing.T) {
	a := solid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	res, err := Compare(a, a, DefaultCompareOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Zero(t, res.DifferentPixels)
	assert.Nil(t, res.Diff)
}

func TestCompareTolerance(t *testing.T) {
	a := solid(4, 4, color.NRGBA{R: 100, A: 255})
	b := solid(4, 4, color.NRGBA{R: 102, A: 255})

	res, err := Compare(a, b, CompareOptions{Tolerance: 2})
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 2, res.MaxDifference)

	res, err = Compare(a, b, CompareOptions{Tolerance: 1})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 16, res.DifferentPixels)
	require.NotNil(t, res.Diff)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, res.Diff.NRGBAAt(0, 0))
}

func TestCompareFuzzyAndPercent(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}
	a := solid(5, 5, white)
	b := solid(5, 5, white)
	a.SetNRGBA(2, 2, black)
	b.SetNRGBA(3, 2, black)

	res, err := Compare(a, b, CompareOptions{})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 2, res.DifferentPixels)

	res, err = Compare(a, b, CompareOptions{FuzzyRadius: 1})
	require.NoError(t, err)
	assert.True(t, res.Match, "a one pixel shift is within the radius")

	res, err = Compare(a, b, CompareOptions{MaxDifferentPercent: 10})
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestCompareDimensions(t *testing.T) {
	_, err := Compare(solid(2, 2, color.NRGBA{}), solid(3, 2, color.NRGBA{}), CompareOptions{})
	assert.Error(t, err)
}

func TestLoadPNGRoundTripsSurface(t *testing.T) {
	s, err := NewSurface(6, 6)
	require.NoError(t, err)
	s.FillRect(0, 0, 6, 6, color.NRGBA{B: 255, A: 255})
	path := filepath.Join(t.TempDir(), "s.png")
	require.NoError(t, s.SavePNG(path))

	img, err := LoadPNG(path)
	require.NoError(t, err)
	res, err := Compare(s.Image(), img, CompareOptions{})
	require.NoError(t, err)
	assert.True(t, res.Match)

	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))
	_, err = LoadPNG(path)
	assert.Error(t, err)
}
