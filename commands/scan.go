package commands

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/mobile-next/qrscan/scanner"
	"github.com/mobile-next/qrscan/screen"
	"github.com/mobile-next/qrscan/utils"
	"github.com/mobile-next/qrscan/worker"
	"golang.org/x/sync/errgroup"
)

// DecodeRequest carries an image as a data URL or bare base64 PNG/JPEG
type DecodeRequest struct {
	Image string `json:"image"`
}

// ScanRegionRequest represents the parameters for scanning a logical region
type ScanRegionRequest struct {
	Region screen.LogicalRegion `json:"region"`
}

// DecodeCommand decodes every QR code in a caller-supplied image
func (s *Service) DecodeCommand(ctx context.Context, req DecodeRequest) *CommandResponse {
	if req.Image == "" {
		return NewErrorResponse(fmt.Errorf("image is required"))
	}

	img, err := utils.DecodeImageData(req.Image)
	if err != nil {
		return NewErrorResponse(err)
	}

	codes, err := worker.Run(ctx, s.pool, func() ([]scanner.Code, error) {
		return s.engine.Decode(img)
	})
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error decoding image: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"codes": codes,
	})
}

// ScanFullCommand captures every display and decodes each frame. Codes are
// deduplicated per display only.
func (s *Service) ScanFullCommand(ctx context.Context) *CommandResponse {
	frames, err := worker.Run(ctx, s.pool, s.capturer.CaptureAll)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error capturing displays: %w", err))
	}

	codes, err := s.decodeFrames(ctx, frames)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error decoding displays: %w", err))
	}

	utils.Verbose("Full screen scan of %d display(s) found %d code(s)", len(frames), len(codes))
	return NewSuccessResponse(map[string]interface{}{
		"codes": codes,
	})
}

// ScanRegionCommand captures a logical region and decodes it in one step
func (s *Service) ScanRegionCommand(ctx context.Context, req ScanRegionRequest) *CommandResponse {
	_, frame, err := s.captureRegion(ctx, req.Region)
	if err != nil {
		return NewErrorResponse(err)
	}

	codes, err := s.decodeFrame(ctx, frame)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error decoding region: %w", err))
	}

	return NewSuccessResponse(map[string]interface{}{
		"codes": codes,
	})
}

func (s *Service) decodeFrame(ctx context.Context, frame screen.Frame) ([]scanner.Code, error) {
	key := frameKey(frame)
	if codes, ok := s.cached(key); ok {
		return codes, nil
	}

	codes, err := worker.Run(ctx, s.pool, func() ([]scanner.Code, error) {
		return s.engine.Decode(frame.Image())
	})
	if err != nil {
		return nil, err
	}

	s.store(key, codes)
	return codes, nil
}

// decodeFrames decodes the frames that miss the cache and returns all codes
// concatenated in frame order. Each frame takes its own pool slot, so a scan
// never runs more decodes than the pool has workers. A frame that fails to
// decode contributes no codes.
func (s *Service) decodeFrames(ctx context.Context, frames []screen.Frame) ([]scanner.Code, error) {
	results := make([][]scanner.Code, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	for i, frame := range frames {
		key := frameKey(frame)
		if codes, ok := s.cached(key); ok {
			results[i] = codes
			continue
		}

		g.Go(func() error {
			codes, err := worker.Run(gctx, s.pool, func() ([]scanner.Code, error) {
				codes, err := s.engine.Decode(frame.Image())
				if err != nil {
					utils.Warn("Failed to decode display %d: %v", i+1, err)
					return []scanner.Code{}, nil
				}
				return codes, nil
			})
			if err != nil {
				return err
			}
			results[i] = codes
			s.store(key, codes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := []scanner.Code{}
	for _, codes := range results {
		all = append(all, codes...)
	}
	return all, nil
}

func (s *Service) cached(key string) ([]scanner.Code, bool) {
	if s.cache == nil {
		return nil, false
	}
	codes, ok := s.cache.Get(key)
	if ok {
		utils.Verbose("Decode cache hit for frame %s", key[:12])
	}
	return codes, ok
}

func (s *Service) store(key string, codes []scanner.Code) {
	if s.cache != nil {
		s.cache.Add(key, codes)
	}
}

// frameKey identifies a frame by its dimensions and pixel content.
func frameKey(frame screen.Frame) string {
	h := sha256.New()
	var dims [8]byte
	binary.BigEndian.PutUint32(dims[:4], uint32(frame.Width))
	binary.BigEndian.PutUint32(dims[4:], uint32(frame.Height))
	h.Write(dims[:])
	h.Write(frame.Pix)
	return hex.EncodeToString(h.Sum(nil))
}
