package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// CompareResult summarizes a pixel comparison.
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest per-channel difference seen
	// Diff marks mismatching pixels red over a grayscale copy of the
	// actual image. Only set when the images differ.
	Diff *image.NRGBA
}

type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) that still
	// counts as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel within the radius.
	FuzzyRadius int
	// MaxDifferentPercent passes the comparison when at most this share
	// of pixels differ.
	MaxDifferentPercent float64
}

func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// Compare checks actual against expected pixel by pixel. Images of
// different sizes never match.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds.Size() != expected.Bounds().Size() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds.Size(), expected.Bounds().Size())
	}
	off := expected.Bounds().Min.Sub(bounds.Min)

	result := &CompareResult{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	diff := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := channels(actual.At(x, y))
			d := channelDiff(a, channels(expected.At(x+off.X, y+off.Y)))
			if d > result.MaxDifference {
				result.MaxDifference = d
			}
			gray := uint8((a[0] + a[1] + a[2]) / 3)
			mark := color.NRGBA{R: gray, G: gray, B: gray, A: 255}
			if d > opts.Tolerance && !fuzzyMatch(a, expected, x+off.X, y+off.Y, opts) {
				result.Match = false
				result.DifferentPixels++
				mark = color.NRGBA{R: 255, A: 255}
			}
			diff.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, mark)
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		if pct <= opts.MaxDifferentPercent {
			result.Match = true
		}
	}
	if !result.Match {
		result.Diff = diff
	}
	return result, nil
}

// LoadPNG decodes a PNG file.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func fuzzyMatch(a [4]int, expected image.Image, x, y int, opts CompareOptions) bool {
	r := opts.FuzzyRadius
	b := expected.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			p := image.Pt(x+dx, y+dy)
			if (dx == 0 && dy == 0) || !p.In(b) {
				continue
			}
			if channelDiff(a, channels(expected.At(p.X, p.Y))) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// channels converts to non-premultiplied 8-bit RGBA.
func channels(c color.Color) [4]int {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [4]int{int(n.R), int(n.G), int(n.B), int(n.A)}
}

func channelDiff(a, b [4]int) int {
	m := 0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}
