package scanner

import (
	"errors"
	"image"
	"image/draw"

	"github.com/mobile-next/qrscan/utils"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidImage is returned when Decode is handed no image at all.
var ErrInvalidImage = errors.New("invalid image")

const defaultParallelism = 4

// Engine runs the strategy catalog against an image until a code is found.
type Engine struct {
	detector    CodeDetector
	strategies  []Strategy
	parallelism int
}

type Option func(*Engine)

// WithStrategies replaces the strategy catalog.
func WithStrategies(strategies []Strategy) Option {
	return func(e *Engine) {
		e.strategies = append([]Strategy(nil), strategies...)
	}
}

// WithParallelism bounds how many images DecodeEach works on at once.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

func NewEngine(detector CodeDetector, opts ...Option) *Engine {
	e := &Engine{
		detector:    detector,
		strategies:  Strategies(),
		parallelism: defaultParallelism,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decode returns the unique codes found in img. Strategies run in catalog
// order and decoding stops after the first strategy that produced a code.
// Finding nothing is not an error: the result is an empty slice.
func (e *Engine) Decode(img image.Image) ([]Code, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}

	codes := []Code{}
	b := img.Bounds()
	if b.Empty() {
		utils.Verbose("Skipping decode of empty %dx%d image", b.Dx(), b.Dy())
		return codes, nil
	}

	seen := make(map[string]struct{})
	for i, strategy := range e.strategies {
		gray := toGray(strategy.Apply(img))

		grids, err := e.detector.Detect(gray)
		if err != nil {
			utils.Verbose("Strategy %d/%d %s: detection failed: %v", i+1, len(e.strategies), strategy, err)
			continue
		}

		utils.Verbose("Strategy %d/%d %s: %d grid(s)", i+1, len(e.strategies), strategy, len(grids))
		if len(grids) == 0 {
			continue
		}

		for _, grid := range grids {
			content, err := e.detector.DecodeGrid(grid)
			if err != nil {
				utils.Verbose("Grid decode failed: %v", err)
				continue
			}

			if _, dup := seen[content]; dup {
				continue
			}
			seen[content] = struct{}{}
			codes = append(codes, NewCode(content))
		}

		if len(codes) > 0 {
			utils.Verbose("Found %d code(s) with strategy %s, stopping", len(codes), strategy)
			return codes, nil
		}
	}

	return codes, nil
}

// DecodeEach decodes every image independently and returns one result per
// image, in input order. A failed image yields an empty result and is logged.
func (e *Engine) DecodeEach(imgs []image.Image) [][]Code {
	results := make([][]Code, len(imgs))

	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, img := range imgs {
		g.Go(func() error {
			codes, err := e.Decode(img)
			if err != nil {
				utils.Warn("Failed to decode image %d: %v", i+1, err)
				codes = []Code{}
			}
			results[i] = codes
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// DecodeMany decodes each image and concatenates the results in image order.
// Codes are only deduplicated within an image, never across images.
func (e *Engine) DecodeMany(imgs []image.Image) []Code {
	all := []Code{}
	for _, codes := range e.DecodeEach(imgs) {
		all = append(all, codes...)
	}
	return all
}

func toGray(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
