package screen

import (
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// MemorySource serves fixed displays and frames. It backs headless scans of
// saved screenshots and stands in for the desktop in tests.
type MemorySource struct {
	mu       sync.Mutex
	displays []Display
	frames   map[int]*image.RGBA
	captures int
	err      error
}

func NewMemorySource() *MemorySource {
	return &MemorySource{frames: make(map[int]*image.RGBA)}
}

// AddDisplay registers a display and the image its capture returns. The
// display index is assigned from the enumeration position.
func (m *MemorySource) AddDisplay(d Display, img image.Image) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d.Index = len(m.displays)
	if d.Name == "" {
		d.Name = fmt.Sprintf("memory-%d", d.Index)
	}
	m.displays = append(m.displays, d)
	m.frames[d.Index] = toRGBA(img)
}

// FailWith makes every subsequent call return err.
func (m *MemorySource) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Captures returns how many captures have been served.
func (m *MemorySource) Captures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captures
}

func (m *MemorySource) Displays() ([]Display, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return append([]Display(nil), m.displays...), nil
}

func (m *MemorySource) Capture(index int) (*image.RGBA, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	img, ok := m.frames[index]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrDisplayNotFound, index)
	}

	m.captures++
	clone := image.NewRGBA(img.Bounds())
	copy(clone.Pix, img.Pix)
	return clone, nil
}

// LoadImageSource builds a MemorySource from image files, laying the displays
// out left to right at scale 1.0 in the order given.
func LoadImageSource(paths []string) (*MemorySource, error) {
	source := NewMemorySource()
	x := 0
	for _, path := range paths {
		img, err := imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		b := img.Bounds()
		source.AddDisplay(Display{
			Name:          path,
			Origin:        image.Pt(x, 0),
			LogicalWidth:  b.Dx(),
			LogicalHeight: b.Dy(),
			ScaleFactor:   1.0,
			Primary:       x == 0,
		}, img)
		x += b.Dx()
	}
	return source, nil
}

func toRGBA(img image.Image) *image.RGBA {
	frame := FrameFromImage(img)
	return frame.Image()
}
