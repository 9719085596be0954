package screen

import (
	"fmt"
	"image"
)

// Display describes one attached monitor in virtual-desktop logical coordinates.
// Origins can be negative (a monitor left of or above the primary one).
type Display struct {
	Index         int         `json:"index"`
	Name          string      `json:"name"`
	Origin        image.Point `json:"origin"`
	LogicalWidth  int         `json:"logicalWidth"`
	LogicalHeight int         `json:"logicalHeight"`
	ScaleFactor   float64     `json:"scaleFactor"`
	Primary       bool        `json:"primary"`
}

// Bounds returns the display's logical rectangle on the virtual desktop.
func (d Display) Bounds() image.Rectangle {
	return image.Rect(d.Origin.X, d.Origin.Y, d.Origin.X+d.LogicalWidth, d.Origin.Y+d.LogicalHeight)
}

// Contains reports whether the logical point lies on this display.
func (d Display) Contains(p image.Point) bool {
	return p.In(d.Bounds())
}

// LogicalRegion is a rectangle in virtual-desktop logical coordinates.
type LogicalRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r LogicalRegion) TopLeft() image.Point {
	return image.Pt(r.X, r.Y)
}

func (r LogicalRegion) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// PhysicalRegion is a rectangle in a captured frame's pixel space.
type PhysicalRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r PhysicalRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r PhysicalRegion) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Frame is a captured RGBA pixel buffer. Pix is tightly packed (stride is
// 4*Width) and must not be modified once the frame is built.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// NewFrame wraps a raw RGBA buffer, failing if it does not match the declared size.
func NewFrame(pix []byte, width, height int) (Frame, error) {
	if width < 0 || height < 0 || len(pix) != 4*width*height {
		return Frame{}, fmt.Errorf("%w: %d bytes for %dx%d", ErrBufferConversion, len(pix), width, height)
	}
	return Frame{Pix: pix, Width: width, Height: height}, nil
}

// FrameFromImage copies any image into a tightly packed RGBA frame.
func FrameFromImage(img image.Image) Frame {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok {
		frame, err := frameFromRGBA(rgba)
		if err == nil {
			return frame
		}
	}

	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.Set(x, y, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return Frame{Pix: out.Pix, Width: b.Dx(), Height: b.Dy()}
}

// frameFromRGBA copies an RGBA image honoring its stride and origin.
func frameFromRGBA(img *image.RGBA) (Frame, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowBytes := 4 * w
	if h > 0 {
		last := img.PixOffset(b.Min.X, b.Max.Y-1) + rowBytes
		if img.Stride < rowBytes || last > len(img.Pix) {
			return Frame{}, fmt.Errorf("%w: buffer of %d bytes, stride %d, for %dx%d", ErrBufferConversion, len(img.Pix), img.Stride, w, h)
		}
	}

	pix := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		start := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(pix[y*rowBytes:(y+1)*rowBytes], img.Pix[start:start+rowBytes])
	}
	return NewFrame(pix, w, h)
}

// Image returns an RGBA view over the frame's pixels.
func (f Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: 4 * f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

func (f Frame) Empty() bool {
	return f.Width == 0 || f.Height == 0
}

// Crop copies the clamped region into a new frame. A region that was produced
// by MapRegion for this frame's dimensions is always in bounds.
func (f Frame) Crop(r PhysicalRegion) Frame {
	r = clampRegion(r, f.Width, f.Height)
	if r.Empty() {
		return Frame{Pix: []byte{}, Width: r.Width, Height: r.Height}
	}

	rowBytes := 4 * r.Width
	pix := make([]byte, rowBytes*r.Height)
	for y := 0; y < r.Height; y++ {
		start := ((r.Y+y)*f.Width + r.X) * 4
		copy(pix[y*rowBytes:(y+1)*rowBytes], f.Pix[start:start+rowBytes])
	}
	return Frame{Pix: pix, Width: r.Width, Height: r.Height}
}
