package screen

import (
	"fmt"
	"image"

	"github.com/mobile-next/qrscan/utils"
)

// ScreenSource is the platform capture backend: it enumerates displays and
// captures one display's full framebuffer.
type ScreenSource interface {
	Displays() ([]Display, error)
	Capture(index int) (*image.RGBA, error)
}

// Enumerator lists displays from a source and validates what it reports.
type Enumerator struct {
	source ScreenSource
}

func NewEnumerator(source ScreenSource) *Enumerator {
	return &Enumerator{source: source}
}

// ListDisplays returns the attached displays in enumeration order.
func (e *Enumerator) ListDisplays() ([]Display, error) {
	displays, err := e.source.Displays()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	if len(displays) == 0 {
		return nil, ErrNoDisplays
	}

	for i := range displays {
		if displays[i].ScaleFactor <= 0 {
			utils.Verbose("Display %d reported scale factor %v, using 1.0", displays[i].Index, displays[i].ScaleFactor)
			displays[i].ScaleFactor = 1.0
		}
	}

	return displays, nil
}
