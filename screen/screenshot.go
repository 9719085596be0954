package screen

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// ScreenshotSource captures the live desktop through kbinani/screenshot.
// The library does not expose per-display DPI, so displays report a scale of
// 1.0 and the capturer derives the effective scale from each captured frame.
type ScreenshotSource struct{}

func NewScreenshotSource() *ScreenshotSource {
	return &ScreenshotSource{}
}

func (s *ScreenshotSource) Displays() ([]Display, error) {
	n := screenshot.NumActiveDisplays()
	displays := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		bounds := screenshot.GetDisplayBounds(i)
		displays = append(displays, Display{
			Index:         i,
			Name:          fmt.Sprintf("display-%d", i),
			Origin:        bounds.Min,
			LogicalWidth:  bounds.Dx(),
			LogicalHeight: bounds.Dy(),
			ScaleFactor:   1.0,
			Primary:       i == 0,
		})
	}
	return displays, nil
}

func (s *ScreenshotSource) Capture(index int) (*image.RGBA, error) {
	if index < 0 || index >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("%w: %d", ErrDisplayNotFound, index)
	}
	return screenshot.CaptureDisplay(index)
}
