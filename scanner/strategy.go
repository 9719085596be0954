package scanner

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Filter is a fixed image transform applied after scaling.
type Filter int

const (
	FilterNone Filter = iota
	FilterContrastBoost
	FilterBrightness
	FilterSharpen
	FilterInvert
)

// Filter parameters. Tuned against real screen captures, not configurable.
const (
	contrastBoostPercent = 50.0
	// +30 levels out of 255
	brightnessPercent = 30.0 * 100.0 / 255.0
	sharpenSigma      = 2.0
)

func (f Filter) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterContrastBoost:
		return "contrast"
	case FilterBrightness:
		return "brightness"
	case FilterSharpen:
		return "sharpen"
	case FilterInvert:
		return "invert"
	default:
		return fmt.Sprintf("filter(%d)", int(f))
	}
}

// Strategy is one (scale, filter) combination tried against a source image.
type Strategy struct {
	Scale  float64
	Filter Filter
}

func (s Strategy) String() string {
	return fmt.Sprintf("x%.1f/%s", s.Scale, s.Filter)
}

// catalog is ordered most-likely-to-succeed first; decoding stops at the
// first strategy that yields a code.
var catalog = []Strategy{
	{Scale: 1.0, Filter: FilterNone},
	{Scale: 1.0, Filter: FilterContrastBoost},
	{Scale: 1.0, Filter: FilterBrightness},
	{Scale: 2.0, Filter: FilterNone},
	{Scale: 1.0, Filter: FilterSharpen},
	{Scale: 1.5, Filter: FilterContrastBoost},
	{Scale: 0.5, Filter: FilterContrastBoost},
	{Scale: 3.0, Filter: FilterContrastBoost},
	{Scale: 1.0, Filter: FilterInvert},
}

// Strategies returns a copy of the fixed strategy catalog in priority order.
func Strategies() []Strategy {
	return append([]Strategy(nil), catalog...)
}

// Apply scales the image with Lanczos resampling, then applies the filter.
// The source image is never modified.
func (s Strategy) Apply(img image.Image) image.Image {
	out := img
	if s.Scale != 1.0 {
		b := img.Bounds()
		w := max(int(float64(b.Dx())*s.Scale), 1)
		h := max(int(float64(b.Dy())*s.Scale), 1)
		out = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	switch s.Filter {
	case FilterContrastBoost:
		return imaging.AdjustContrast(out, contrastBoostPercent)
	case FilterBrightness:
		return imaging.AdjustBrightness(out, brightnessPercent)
	case FilterSharpen:
		return imaging.Sharpen(out, sharpenSigma)
	case FilterInvert:
		return imaging.Invert(out)
	default:
		return out
	}
}
