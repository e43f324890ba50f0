// Command tabview opens a page in a window and shows its canvases live.
// Every animation frame repaints the view; clicking a canvas dispatches
// a click to it.
package main

import (
	"context"
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"tabscript/pkg/config"
	"tabscript/pkg/host"
	"tabscript/pkg/observability"
)

// canvasView is an image that forwards taps to the open tab.
type canvasView struct {
	widget.BaseWidget
	img   *canvas.Image
	onTap func(x, y int)
}

func newCanvasView() *canvasView {
	v := &canvasView{img: canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))}
	v.img.FillMode = canvas.ImageFillOriginal
	v.ExtendBaseWidget(v)
	return v
}

func (v *canvasView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.img)
}

func (v *canvasView) Tapped(ev *fyne.PointEvent) {
	if v.onTap != nil {
		v.onTap(int(ev.Position.X), int(ev.Position.Y))
	}
}

func (v *canvasView) show(img image.Image) {
	v.img.Image = img
	v.img.Refresh()
}

func main() {
	cfg, err := config.Load(os.Getenv("TABSCRIPT_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := observability.InitializeLogger(cfg.Logger)
	defer observability.Sync()

	a := app.New()
	w := a.NewWindow("tabview")
	w.Resize(fyne.NewSize(float32(cfg.Host.ViewportWidth), float32(cfg.Host.ViewportHeight)))

	view := newCanvasView()
	status := widget.NewLabel("Enter a page URL or path and press Enter")
	console := widget.NewLabel("")

	var tab *host.Tab
	view.onTap = func(x, y int) {
		if tab == nil {
			return
		}
		current := tab
		go func() {
			if err := current.ClickSnapshot(x, y); err != nil {
				logger.Warn("click failed", zap.Error(err))
			}
		}()
	}

	urlEntry := widget.NewEntry()
	urlEntry.SetPlaceHolder("https://example.com/page.html")
	urlEntry.OnSubmitted = func(page string) {
		if tab != nil {
			tab.Close()
			tab = nil
		}
		status.SetText("Loading " + page + "...")
		go func() {
			opened, err := host.Open(context.Background(), cfg.Host, page,
				host.WithLogger(logger),
				host.WithConsole(func(line string) {
					fyne.Do(func() { console.SetText(line) })
				}),
				host.WithFrameObserver(func(f host.Frame) {
					fyne.Do(func() { view.show(f.Image) })
				}))
			if err != nil {
				fyne.Do(func() { status.SetText("Error: " + err.Error()) })
				return
			}
			img, err := opened.Snapshot()
			fyne.Do(func() {
				if tab != nil {
					tab.Close()
				}
				tab = opened
				if err == nil {
					view.show(img)
				}
				status.SetText(opened.URL())
				w.SetTitle("tabview: " + page)
			})
		}()
	}
	w.SetOnClosed(func() {
		if tab != nil {
			tab.Close()
		}
	})

	bottom := container.NewVBox(console, status)
	content := container.NewBorder(urlEntry, bottom, nil, nil, container.NewScroll(view))
	w.SetContent(content)
	w.Canvas().Focus(urlEntry)

	if len(os.Args) > 1 {
		urlEntry.SetText(os.Args[1])
		urlEntry.OnSubmitted(os.Args[1])
	}
	w.ShowAndRun()
}
