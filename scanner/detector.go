package scanner

import "image"

// Grid is a detected but not yet decoded code candidate. Payload is owned by
// the detector that produced it.
type Grid struct {
	Corners []image.Point
	Payload any
}

// CodeDetector finds candidate code grids in a luminance image and decodes them
// one at a time.
type CodeDetector interface {
	Detect(img *image.Gray) ([]Grid, error)
	DecodeGrid(grid Grid) (string, error)
}
