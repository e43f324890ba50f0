package host

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"go.uber.org/zap"

	"tabscript/pkg/css"
	"tabscript/pkg/html"
	"tabscript/pkg/js"
	"tabscript/pkg/render"
)

const stackGap = 8

// Canvas is one drawn-on canvas element.
type Canvas struct {
	Handle  js.Handle
	ID      string
	Surface *render.Surface
}

// surfaceFor returns the backing surface of a canvas element, creating it
// from the width and height attributes on first use. A canvas too large
// to allocate never gets a surface.
func (t *Tab) surfaceFor(n *html.Node) (*render.Surface, error) {
	if !n.IsElement() || n.TagName != "canvas" {
		return nil, fmt.Errorf("%w: <%s>", ErrNotCanvas, n.TagName)
	}
	if s, ok := t.surfaces[n]; ok {
		return s, nil
	}
	s, err := render.NewSurface(dimensionAttr(n, "width"), dimensionAttr(n, "height"))
	if err != nil {
		return nil, err
	}
	t.surfaces[n] = s
	return s, nil
}

// dimensionAttr reads a canvas size attribute. Anything that is not a
// non-negative length yields 0, which selects the default size.
func dimensionAttr(n *html.Node, name string) int {
	v, _ := n.GetAttribute(name)
	f, ok := css.ParseLength(v)
	if !ok || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

func parseFill(style string) color.Color {
	if c, ok := css.ParseColor(style); ok {
		return c
	}
	return color.Black
}

// drawTarget resolves the canvas of a draw op. Draw calls on anything
// other than a canvas are dropped.
func (t *Tab) drawTarget(op js.Op, args []any) (*render.Surface, bool, error) {
	n, err := t.nodeArg(op, args, 0)
	if err != nil {
		return nil, false, err
	}
	s, err := t.surfaceFor(n)
	switch {
	case errors.Is(err, render.ErrTooLarge):
		if !t.oversized[n] {
			t.oversized[n] = true
			t.logger.Warn("canvas too large, draw calls dropped", zap.Error(err))
		}
		return nil, false, nil
	case err != nil:
		t.logger.Debug("draw call ignored", zap.String("op", string(op)), zap.Error(err))
		return nil, false, nil
	}
	return s, true, nil
}

func (t *Tab) fillRect(args []any) error {
	s, ok, err := t.drawTarget(js.OpFillRect, args)
	if !ok {
		return err
	}
	var xywh [4]float64
	for i := range xywh {
		if xywh[i], err = argFloat(js.OpFillRect, args, i+1); err != nil {
			return err
		}
	}
	style, err := argString(js.OpFillRect, args, 5)
	if err != nil {
		return err
	}
	s.FillRect(xywh[0], xywh[1], xywh[2], xywh[3], parseFill(style))
	return nil
}

func (t *Tab) fillText(args []any) error {
	s, ok, err := t.drawTarget(js.OpFillText, args)
	if !ok {
		return err
	}
	text, err := argString(js.OpFillText, args, 1)
	if err != nil {
		return err
	}
	x, err := argFloat(js.OpFillText, args, 2)
	if err != nil {
		return err
	}
	y, err := argFloat(js.OpFillText, args, 3)
	if err != nil {
		return err
	}
	style, err := argString(js.OpFillText, args, 4)
	if err != nil {
		return err
	}
	s.FillText(text, x, y, parseFill(style))
	return nil
}

// canvases lists drawn-on canvases still attached to the document, in
// document order. Loop goroutine only.
func (t *Tab) canvases() []Canvas {
	var out []Canvas
	for _, n := range t.doc.Root.Elements() {
		if s, ok := t.surfaces[n]; ok {
			out = append(out, Canvas{Handle: t.handles.handleFor(n), ID: n.ID(), Surface: s})
		}
	}
	return out
}

// Canvases returns the drawn-on canvases of the page.
func (t *Tab) Canvases() ([]Canvas, error) {
	var out []Canvas
	err := t.Do(func() error {
		out = t.canvases()
		return nil
	})
	return out, err
}

// CanvasPNG encodes the canvas behind h.
func (t *Tab) CanvasPNG(h js.Handle) ([]byte, error) {
	var data []byte
	err := t.Do(func() error {
		n, err := t.handles.node(h)
		if err != nil {
			return err
		}
		s, err := t.surfaceFor(n)
		if err != nil {
			return err
		}
		data, err = s.PNG()
		return err
	})
	return data, err
}

// snapshot stacks every canvas into one image. Loop goroutine only.
func (t *Tab) snapshot() *image.NRGBA {
	cs := t.canvases()
	surfaces := make([]*render.Surface, len(cs))
	for i, c := range cs {
		surfaces[i] = c.Surface
	}
	return render.Stack(surfaces, stackGap)
}

// Snapshot returns the stacked canvases as they are now.
func (t *Tab) Snapshot() (*image.NRGBA, error) {
	var img *image.NRGBA
	err := t.Do(func() error {
		img = t.snapshot()
		return nil
	})
	return img, err
}
