package screen

import (
	"fmt"

	"github.com/mobile-next/qrscan/utils"
)

// Capturer maps logical desktop regions to physical pixels and captures them.
type Capturer struct {
	enumerator *Enumerator
	source     ScreenSource
}

func NewCapturer(source ScreenSource) *Capturer {
	return &Capturer{
		enumerator: NewEnumerator(source),
		source:     source,
	}
}

func (c *Capturer) ListDisplays() ([]Display, error) {
	return c.enumerator.ListDisplays()
}

// CaptureAll captures every display, one frame per display in enumeration order.
func (c *Capturer) CaptureAll() ([]Frame, error) {
	displays, err := c.enumerator.ListDisplays()
	if err != nil {
		return nil, err
	}

	frames := make([]Frame, 0, len(displays))
	for _, d := range displays {
		frame, err := c.captureFrame(d)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}

	return frames, nil
}

// CaptureDisplay captures the full frame of the display at the given position
// in the enumeration.
func (c *Capturer) CaptureDisplay(position int) (Display, Frame, error) {
	displays, err := c.enumerator.ListDisplays()
	if err != nil {
		return Display{}, Frame{}, err
	}

	if position < 0 || position >= len(displays) {
		return Display{}, Frame{}, fmt.Errorf("%w: %d (have %d)", ErrDisplayNotFound, position, len(displays))
	}

	d := displays[position]
	frame, err := c.captureFrame(d)
	if err != nil {
		return Display{}, Frame{}, err
	}

	return d, frame, nil
}

// CaptureRegion captures the display owning the region's top-left point and
// crops the frame to the region. Regions partly or fully outside every display
// produce a clamped, possibly empty, frame rather than an error.
func (c *Capturer) CaptureRegion(region LogicalRegion) (Frame, error) {
	displays, err := c.enumerator.ListDisplays()
	if err != nil {
		return Frame{}, err
	}

	d := OwningDisplay(displays, region)
	utils.Verbose("Region %s owned by display %d at (%d,%d) %dx%d scale %.2f",
		region, d.Index, d.Origin.X, d.Origin.Y, d.LogicalWidth, d.LogicalHeight, d.ScaleFactor)

	frame, err := c.captureFrame(d)
	if err != nil {
		return Frame{}, err
	}

	return CropLogical(d, frame, region), nil
}

func (c *Capturer) captureFrame(d Display) (Frame, error) {
	img, err := c.source.Capture(d.Index)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: display %d: %v", ErrCaptureFailed, d.Index, err)
	}

	if img == nil {
		return Frame{}, fmt.Errorf("%w: display %d returned no image", ErrCaptureFailed, d.Index)
	}

	frame, err := frameFromRGBA(img)
	if err != nil {
		return Frame{}, err
	}

	utils.Verbose("Captured display %d: %dx%d physical", d.Index, frame.Width, frame.Height)
	return frame, nil
}

// OwningDisplay picks the first display containing the region's top-left point,
// falling back to the first display. displays must not be empty.
func OwningDisplay(displays []Display, region LogicalRegion) Display {
	p := region.TopLeft()
	for _, d := range displays {
		if d.Contains(p) {
			return d
		}
	}
	return displays[0]
}

// CropLogical crops a frame captured from d to the logical region.
func CropLogical(d Display, frame Frame, region LogicalRegion) Frame {
	physical := MapRegion(d, frame.Width, frame.Height, region)
	utils.Verbose("Logical %s -> physical %s in %dx%d frame", region, physical, frame.Width, frame.Height)
	return frame.Crop(physical)
}

// MapRegion converts a logical region to the physical pixel space of a frame
// captured from d. The scale is derived from the frame size over the display's
// logical size, since the reported scale factor can disagree with what the
// platform actually captured. The result always lies within the frame.
func MapRegion(d Display, frameWidth, frameHeight int, region LogicalRegion) PhysicalRegion {
	scaleX := axisScale(frameWidth, d.LogicalWidth, d.ScaleFactor)
	scaleY := axisScale(frameHeight, d.LogicalHeight, d.ScaleFactor)

	relX := max(region.X-d.Origin.X, 0)
	relY := max(region.Y-d.Origin.Y, 0)

	physical := PhysicalRegion{
		X:      int(float64(relX) * scaleX),
		Y:      int(float64(relY) * scaleY),
		Width:  int(float64(max(region.Width, 0)) * scaleX),
		Height: int(float64(max(region.Height, 0)) * scaleY),
	}

	return clampRegion(physical, frameWidth, frameHeight)
}

func axisScale(physical, logical int, fallback float64) float64 {
	if logical > 0 {
		return float64(physical) / float64(logical)
	}
	if fallback > 0 {
		return fallback
	}
	return 1.0
}

func clampRegion(r PhysicalRegion, frameWidth, frameHeight int) PhysicalRegion {
	r.X, r.Width = clampSpan(r.X, r.Width, frameWidth)
	r.Y, r.Height = clampSpan(r.Y, r.Height, frameHeight)
	return r
}

// clampSpan applies safe = min(pos, limit-1), length = min(length, limit-safe).
func clampSpan(pos, length, limit int) (int, int) {
	if limit <= 0 {
		return 0, 0
	}
	pos = min(max(pos, 0), limit-1)
	length = min(max(length, 0), limit-pos)
	return pos, length
}
