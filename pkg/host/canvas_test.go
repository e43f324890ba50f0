package host

import (
	"bytes"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabscript/pkg/render"
)

func TestCanvasDrawing(t *testing.T) {
	tab := openPage(t, `<body>
		<canvas id="c" width="20" height="10"></canvas>
		<div id="d"></div>
		<script>
			var ctx = c.getContext("2d");
			ctx.fillStyle = "red";
			ctx.fillRect(0, 0, 10, 10);
			ctx.fillText("hi", 0, 9);
			d.getContext("2d").fillRect(0, 0, 1, 1);
		</script>
	</body>`)
	require.Empty(t, tab.Errors(), "drawing on a non-canvas is silently ignored")

	canvases, err := tab.Canvases()
	require.NoError(t, err)
	require.Len(t, canvases, 1)
	assert.Equal(t, "c", canvases[0].ID)
	assert.Equal(t, 20, canvases[0].Surface.Width())

	data, err := tab.CanvasPNG(canvases[0].Handle)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())

	snap, err := tab.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, snap.NRGBAAt(5, 2))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, snap.NRGBAAt(18, 2))

	hs, err := tab.Query("#d")
	require.NoError(t, err)
	_, err = tab.CanvasPNG(hs[0])
	assert.ErrorIs(t, err, ErrNotCanvas)
}

func TestOversizedCanvasDropsDrawCalls(t *testing.T) {
	tab := openPage(t, `<body>
		<canvas id="huge" width="2000000000" height="2000000000"></canvas>
		<canvas id="wide" width="100000" height="100000"></canvas>
		<canvas id="fine" width="4px" height="4"></canvas>
		<script>
			huge.getContext("2d").fillRect(0, 0, 10, 10);
			huge.getContext("2d").fillText("x", 0, 9);
			wide.getContext("2d").fillRect(0, 0, 10, 10);
			fine.getContext("2d").fillRect(0, 0, 4, 4);
			console.log("drawn");
		</script>
	</body>`)
	assert.Equal(t, []string{"drawn"}, tab.Console())
	assert.Empty(t, tab.Errors())

	canvases, err := tab.Canvases()
	require.NoError(t, err)
	require.Len(t, canvases, 1)
	assert.Equal(t, "fine", canvases[0].ID)
	assert.Equal(t, 4, canvases[0].Surface.Width())

	hs, err := tab.Query("#huge")
	require.NoError(t, err)
	_, err = tab.CanvasPNG(hs[0])
	assert.ErrorIs(t, err, render.ErrTooLarge)
}

func TestFrameObservers(t *testing.T) {
	var mu sync.Mutex
	var frames []Frame
	observe := WithFrameObserver(func(f Frame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	})
	tab := openPage(t, `<canvas id="c" width="4" height="4"></canvas><script>
		var ctx = c.getContext("2d");
		var n = 0;
		function step() {
			n++;
			ctx.fillStyle = n === 1 ? "blue" : "lime";
			ctx.fillRect(0, 0, 4, 4);
			if (n < 2) requestAnimationFrame(step);
		}
		requestAnimationFrame(step);
	</script>`, observe)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(frames) >= 2
	}, 2*time.Second, 2*time.Millisecond)

	n, err := tab.Frames()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, frames[0].Number)
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, frames[0].Image.NRGBAAt(1, 1))
	last := frames[1]
	assert.Equal(t, 2, last.Number)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, last.Image.NRGBAAt(1, 1))
}

func TestClickSnapshotHitsCanvas(t *testing.T) {
	tab := openPage(t, `<canvas id="a" width="10" height="10"></canvas><canvas id="b" width="10" height="10"></canvas>
	<script>
		a.getContext("2d").fillRect(0, 0, 1, 1);
		b.getContext("2d").fillRect(0, 0, 1, 1);
		a.addEventListener("click", function () { console.log("a"); });
		b.addEventListener("click", function () { console.log("b"); });
	</script>`)

	require.NoError(t, tab.ClickSnapshot(5, 5))
	require.NoError(t, tab.ClickSnapshot(5, 10+stackGap+2))
	require.NoError(t, tab.ClickSnapshot(5, 10+2), "the gap hits nothing")
	require.NoError(t, tab.ClickSnapshot(50, 5), "right of the canvas hits nothing")
	assert.Equal(t, []string{"a", "b"}, tab.Console())
}
