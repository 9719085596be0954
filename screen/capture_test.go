package screen

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gradient paints each pixel with its own coordinates so crops can be verified.
func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 7, A: 255})
		}
	}
	return img
}

func dualMonitorSource() *MemorySource {
	source := NewMemorySource()
	// primary at the origin, 100x80 logical, captured at 2x
	source.AddDisplay(Display{Origin: image.Pt(0, 0), LogicalWidth: 100, LogicalHeight: 80, ScaleFactor: 2, Primary: true}, gradient(200, 160))
	// secondary to the left of the primary, 60x50 logical at 1x
	source.AddDisplay(Display{Origin: image.Pt(-60, 0), LogicalWidth: 60, LogicalHeight: 50, ScaleFactor: 1}, gradient(60, 50))
	return source
}

func TestMapRegion(t *testing.T) {
	hidpi := Display{Origin: image.Pt(0, 0), LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 2}
	left := Display{Origin: image.Pt(-1280, -200), LogicalWidth: 1280, LogicalHeight: 1024, ScaleFactor: 1}

	tests := []struct {
		name    string
		display Display
		frameW  int
		frameH  int
		region  LogicalRegion
		want    PhysicalRegion
	}{
		{
			name:    "scale 1 identity",
			display: Display{LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 1},
			frameW:  100, frameH: 100,
			region: LogicalRegion{X: 10, Y: 20, Width: 30, Height: 40},
			want:   PhysicalRegion{X: 10, Y: 20, Width: 30, Height: 40},
		},
		{
			name:    "scale derived from frame, not descriptor",
			display: hidpi,
			frameW:  200, frameH: 200,
			region: LogicalRegion{X: 10, Y: 10, Width: 20, Height: 20},
			want:   PhysicalRegion{X: 20, Y: 20, Width: 40, Height: 40},
		},
		{
			name:    "descriptor says 2x but platform captured 1.5x",
			display: hidpi,
			frameW:  150, frameH: 150,
			region: LogicalRegion{X: 10, Y: 10, Width: 20, Height: 20},
			want:   PhysicalRegion{X: 15, Y: 15, Width: 30, Height: 30},
		},
		{
			name:    "negative origin display",
			display: left,
			frameW:  1280, frameH: 1024,
			region: LogicalRegion{X: -1000, Y: 0, Width: 50, Height: 50},
			want:   PhysicalRegion{X: 280, Y: 200, Width: 50, Height: 50},
		},
		{
			name:    "region starting left of display clamps to zero",
			display: Display{Origin: image.Pt(100, 0), LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 1},
			frameW:  100, frameH: 100,
			region: LogicalRegion{X: 0, Y: 0, Width: 50, Height: 50},
			want:   PhysicalRegion{X: 0, Y: 0, Width: 50, Height: 50},
		},
		{
			name:    "region past the right edge",
			display: Display{LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 1},
			frameW:  100, frameH: 100,
			region: LogicalRegion{X: 90, Y: 95, Width: 50, Height: 50},
			want:   PhysicalRegion{X: 90, Y: 95, Width: 10, Height: 5},
		},
		{
			name:    "region fully beyond the desktop",
			display: Display{LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 1},
			frameW:  100, frameH: 100,
			region: LogicalRegion{X: 5000, Y: 5000, Width: 10, Height: 10},
			want:   PhysicalRegion{X: 99, Y: 99, Width: 1, Height: 1},
		},
		{
			name:    "zero width",
			display: Display{LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 1},
			frameW:  100, frameH: 100,
			region: LogicalRegion{X: 10, Y: 10, Width: 0, Height: 10},
			want:   PhysicalRegion{X: 10, Y: 10, Width: 0, Height: 10},
		},
		{
			name:    "empty frame",
			display: Display{LogicalWidth: 100, LogicalHeight: 100, ScaleFactor: 1},
			frameW:  0, frameH: 0,
			region: LogicalRegion{X: 10, Y: 10, Width: 10, Height: 10},
			want:   PhysicalRegion{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapRegion(tt.display, tt.frameW, tt.frameH, tt.region)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapRegion_AlwaysWithinFrame(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		d := Display{
			Origin:        image.Pt(rng.Intn(6000)-3000, rng.Intn(4000)-2000),
			LogicalWidth:  rng.Intn(3000) + 1,
			LogicalHeight: rng.Intn(2000) + 1,
			ScaleFactor:   []float64{1, 1.25, 1.5, 2, 3}[rng.Intn(5)],
		}
		frameW := int(float64(d.LogicalWidth) * d.ScaleFactor)
		frameH := int(float64(d.LogicalHeight) * d.ScaleFactor)
		region := LogicalRegion{
			X:      rng.Intn(12000) - 6000,
			Y:      rng.Intn(8000) - 4000,
			Width:  rng.Intn(5000),
			Height: rng.Intn(5000),
		}

		got := MapRegion(d, frameW, frameH, region)
		require.GreaterOrEqual(t, got.X, 0, "case %d: %+v %+v", i, d, region)
		require.GreaterOrEqual(t, got.Y, 0, "case %d: %+v %+v", i, d, region)
		require.GreaterOrEqual(t, got.Width, 0, "case %d", i)
		require.GreaterOrEqual(t, got.Height, 0, "case %d", i)
		require.LessOrEqual(t, got.X+got.Width, frameW, "case %d: %+v %+v", i, d, region)
		require.LessOrEqual(t, got.Y+got.Height, frameH, "case %d: %+v %+v", i, d, region)
	}
}

func TestOwningDisplay(t *testing.T) {
	displays := []Display{
		{Index: 0, Origin: image.Pt(0, 0), LogicalWidth: 100, LogicalHeight: 100},
		{Index: 1, Origin: image.Pt(-100, 0), LogicalWidth: 100, LogicalHeight: 100},
		// overlaps display 0; enumeration order wins
		{Index: 2, Origin: image.Pt(50, 50), LogicalWidth: 100, LogicalHeight: 100},
	}

	assert.Equal(t, 0, OwningDisplay(displays, LogicalRegion{X: 10, Y: 10}).Index)
	assert.Equal(t, 1, OwningDisplay(displays, LogicalRegion{X: -10, Y: 10}).Index)
	assert.Equal(t, 0, OwningDisplay(displays, LogicalRegion{X: 60, Y: 60}).Index)
	assert.Equal(t, 2, OwningDisplay(displays, LogicalRegion{X: 120, Y: 120}).Index)
	assert.Equal(t, 0, OwningDisplay(displays, LogicalRegion{X: 9000, Y: 9000}).Index, "falls back to the first display")
}

func TestCapturer_CaptureRegion(t *testing.T) {
	capturer := NewCapturer(dualMonitorSource())

	frame, err := capturer.CaptureRegion(LogicalRegion{X: 10, Y: 5, Width: 20, Height: 10})
	require.NoError(t, err)
	assert.Equal(t, 40, frame.Width)
	assert.Equal(t, 20, frame.Height)

	img := frame.Image()
	assert.Equal(t, color.RGBA{R: 20, G: 10, B: 7, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 59, G: 29, B: 7, A: 255}, img.RGBAAt(39, 19))
}

func TestCapturer_CaptureRegion_NegativeOriginDisplay(t *testing.T) {
	capturer := NewCapturer(dualMonitorSource())

	frame, err := capturer.CaptureRegion(LogicalRegion{X: -50, Y: 10, Width: 5, Height: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, frame.Width)
	assert.Equal(t, 5, frame.Height)
	assert.Equal(t, color.RGBA{R: 10, G: 10, B: 7, A: 255}, frame.Image().RGBAAt(0, 0))
}

func TestCapturer_CaptureRegion_OffDesktopIsNotAnError(t *testing.T) {
	capturer := NewCapturer(dualMonitorSource())

	frame, err := capturer.CaptureRegion(LogicalRegion{X: 10000, Y: 10000, Width: 50, Height: 50})
	require.NoError(t, err)
	assert.LessOrEqual(t, frame.Width, 200)
	assert.LessOrEqual(t, frame.Height, 160)
	assert.Len(t, frame.Pix, 4*frame.Width*frame.Height)
}

func TestCapturer_CaptureRegion_ZeroWidth(t *testing.T) {
	capturer := NewCapturer(dualMonitorSource())

	frame, err := capturer.CaptureRegion(LogicalRegion{X: 10, Y: 10, Width: 0, Height: 30})
	require.NoError(t, err)
	assert.Equal(t, 0, frame.Width)
	assert.True(t, frame.Empty())
	assert.Empty(t, frame.Pix)
}

func TestCapturer_CaptureAll(t *testing.T) {
	source := dualMonitorSource()
	capturer := NewCapturer(source)

	frames, err := capturer.CaptureAll()
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, 200, frames[0].Width)
	assert.Equal(t, 60, frames[1].Width)
	assert.Equal(t, 2, source.Captures())
}

func TestCapturer_NoDisplays(t *testing.T) {
	capturer := NewCapturer(NewMemorySource())

	_, err := capturer.CaptureAll()
	assert.ErrorIs(t, err, ErrNoDisplays)

	_, err = capturer.CaptureRegion(LogicalRegion{Width: 10, Height: 10})
	assert.ErrorIs(t, err, ErrNoDisplays)
}

func TestCapturer_CaptureFailed(t *testing.T) {
	source := dualMonitorSource()
	source.FailWith(errors.New("permission denied"))
	capturer := NewCapturer(source)

	_, err := capturer.CaptureAll()
	assert.ErrorIs(t, err, ErrCaptureFailed)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestCapturer_CaptureDisplay(t *testing.T) {
	capturer := NewCapturer(dualMonitorSource())

	d, frame, err := capturer.CaptureDisplay(1)
	require.NoError(t, err)
	assert.Equal(t, -60, d.Origin.X)
	assert.Equal(t, 60, frame.Width)

	_, _, err = capturer.CaptureDisplay(5)
	assert.ErrorIs(t, err, ErrDisplayNotFound)
}

func TestNewFrame_BufferMismatch(t *testing.T) {
	_, err := NewFrame(make([]byte, 10), 2, 2)
	assert.ErrorIs(t, err, ErrBufferConversion)

	frame, err := NewFrame(make([]byte, 16), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Width)
}

func TestFrameFromImage_SubImage(t *testing.T) {
	src := gradient(10, 10)
	sub := src.SubImage(image.Rect(2, 3, 6, 8))

	frame := FrameFromImage(sub)
	assert.Equal(t, 4, frame.Width)
	assert.Equal(t, 5, frame.Height)
	assert.Equal(t, color.RGBA{R: 2, G: 3, B: 7, A: 255}, frame.Image().RGBAAt(0, 0))
}

func TestDisplay_Contains(t *testing.T) {
	d := Display{Origin: image.Pt(-1920, -200), LogicalWidth: 1920, LogicalHeight: 1080}
	assert.Equal(t, image.Rect(-1920, -200, 0, 880), d.Bounds())

	tests := []struct {
		p    image.Point
		want bool
	}{
		{image.Pt(-1920, -200), true},
		{image.Pt(-1, 879), true},
		{image.Pt(0, 0), false},
		{image.Pt(-1921, 0), false},
		{image.Pt(-100, 880), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.Contains(tt.p), "point %v", tt.p)
	}

	assert.False(t, Display{LogicalHeight: 10}.Contains(image.Pt(0, 0)), "zero width display owns nothing")
}

func TestFrameFromImage_EmptyImage(t *testing.T) {
	frame := FrameFromImage(image.NewRGBA(image.Rect(0, 0, 0, 5)))
	assert.True(t, frame.Empty())
	assert.Empty(t, frame.Pix)
}
