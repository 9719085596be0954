package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobile-next/qrscan/screen"
	"github.com/mobile-next/qrscan/types"
	"github.com/mobile-next/qrscan/utils"
	"github.com/mobile-next/qrscan/worker"
)

// CaptureRequest controls how captured frames are returned. An empty
// OutputPath returns frames inline as data URLs. Otherwise frames are written
// to disk: for a region it names the file, for a full capture the directory.
type CaptureRequest struct {
	Format     string `json:"format,omitempty"`     // "png" or "jpeg"
	Quality    int    `json:"quality,omitempty"`    // 1-100, only used for JPEG
	OutputPath string `json:"outputPath,omitempty"` // file or directory, empty for inline data
}

// CaptureRegionRequest represents the parameters for capturing a logical region
type CaptureRegionRequest struct {
	CaptureRequest
	Region screen.LogicalRegion `json:"region"`
}

func (r *CaptureRequest) normalize() error {
	if r.Format == "" {
		r.Format = "png"
	}

	r.Format = strings.ToLower(r.Format)
	if r.Format == "jpg" {
		r.Format = "jpeg"
	}
	if r.Format != "png" && r.Format != "jpeg" {
		return fmt.Errorf("invalid format '%s'. Supported formats are 'png' and 'jpeg'", r.Format)
	}

	if r.Format == "jpeg" && (r.Quality < 1 || r.Quality > 100) {
		r.Quality = 90
	}
	return nil
}

func (r CaptureRequest) extension() string {
	if r.Format == "jpeg" {
		return "jpg"
	}
	return "png"
}

// CaptureAllCommand captures every display
func (s *Service) CaptureAllCommand(ctx context.Context, req CaptureRequest) *CommandResponse {
	if err := req.normalize(); err != nil {
		return NewErrorResponse(err)
	}

	frames, err := worker.Run(ctx, s.pool, s.capturer.CaptureAll)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error capturing displays: %w", err))
	}

	timestamp := time.Now().Format("20060102150405")
	result := make([]types.FrameData, 0, len(frames))
	for i, frame := range frames {
		path := ""
		if req.OutputPath != "" {
			path = filepath.Join(req.OutputPath, fmt.Sprintf("capture-display%d-%s.%s", i, timestamp, req.extension()))
		}

		data, err := exportFrame(i, frame, req, path)
		if err != nil {
			return NewErrorResponse(err)
		}
		result = append(result, data)
	}

	return NewSuccessResponse(map[string]interface{}{
		"frames": result,
	})
}

// CaptureRegionCommand captures a logical region of the desktop
func (s *Service) CaptureRegionCommand(ctx context.Context, req CaptureRegionRequest) *CommandResponse {
	if err := req.normalize(); err != nil {
		return NewErrorResponse(err)
	}

	display, frame, err := s.captureRegion(ctx, req.Region)
	if err != nil {
		return NewErrorResponse(err)
	}

	data, err := exportFrame(display, frame, req.CaptureRequest, req.OutputPath)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(data)
}

type regionCapture struct {
	display int
	frame   screen.Frame
}

func (s *Service) captureRegion(ctx context.Context, region screen.LogicalRegion) (int, screen.Frame, error) {
	captured, err := worker.Run(ctx, s.pool, func() (regionCapture, error) {
		displays, err := s.capturer.ListDisplays()
		if err != nil {
			return regionCapture{}, err
		}
		frame, err := s.capturer.CaptureRegion(region)
		if err != nil {
			return regionCapture{}, err
		}
		return regionCapture{display: screen.OwningDisplay(displays, region).Index, frame: frame}, nil
	})
	if err != nil {
		return 0, screen.Frame{}, fmt.Errorf("error capturing region %s: %w", region, err)
	}
	return captured.display, captured.frame, nil
}

// exportFrame encodes a frame and either writes it to path or inlines it as a
// data URL. Empty frames are reported with their size and no image data.
func exportFrame(display int, frame screen.Frame, req CaptureRequest, path string) (types.FrameData, error) {
	data := types.FrameData{
		Display: display,
		Width:   frame.Width,
		Height:  frame.Height,
		Format:  req.Format,
	}

	if frame.Empty() {
		return data, nil
	}

	imageBytes, err := utils.EncodeImage(frame.Image(), req.Format, req.Quality)
	if err != nil {
		return types.FrameData{}, fmt.Errorf("error encoding frame: %w", err)
	}

	if path == "" {
		data.Data = utils.DataURL(req.Format, imageBytes)
		return data, nil
	}

	finalPath, err := filepath.Abs(path)
	if err != nil {
		return types.FrameData{}, fmt.Errorf("invalid output path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o750); err != nil {
		return types.FrameData{}, fmt.Errorf("error creating output directory: %w", err)
	}

	if err := os.WriteFile(finalPath, imageBytes, 0o600); err != nil {
		return types.FrameData{}, fmt.Errorf("error writing file: %w", err)
	}

	data.FilePath = finalPath
	return data, nil
}
