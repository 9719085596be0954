package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mobile-next/qrscan/scanner"
	"github.com/mobile-next/qrscan/screen"
	"github.com/mobile-next/qrscan/session"
	"github.com/mobile-next/qrscan/types"
	"github.com/mobile-next/qrscan/utils"
	"github.com/mobile-next/qrscan/worker"
)

// BeginSelectionRequest represents the parameters for starting a region selection
type BeginSelectionRequest struct {
	// Display is the enumeration position to capture; nil uses the configured default.
	Display *int `json:"display,omitempty"`

	// Replace drops a session that is already held instead of failing.
	Replace bool `json:"replace,omitempty"`
}

// CompleteSelectionRequest carries the region the user picked, in logical
// desktop coordinates.
type CompleteSelectionRequest struct {
	Region screen.LogicalRegion `json:"region"`
}

// RegionScanResult is the payload of EventRegionScanComplete
type RegionScanResult struct {
	SessionID string         `json:"sessionId"`
	Codes     []scanner.Code `json:"codes"`
}

type capturedDisplay struct {
	display screen.Display
	frame   screen.Frame
	preview []byte
}

// BeginSelectionCommand captures the screen the user is about to select on and
// holds it in the session slot together with a PNG preview for the overlay.
// Requests that cannot start are rejected before the overlay is told to hide;
// a failure after that point is followed by EventRegionScanCanceled.
func (s *Service) BeginSelectionCommand(ctx context.Context, req BeginSelectionRequest) *CommandResponse {
	position := s.opts.Display
	if req.Display != nil {
		position = *req.Display
	}

	if !req.Replace && s.slot.Active() {
		return NewErrorResponse(session.ErrSessionActive)
	}

	if err := s.checkDisplay(position); err != nil {
		return NewErrorResponse(fmt.Errorf("error capturing display %d: %w", position, err))
	}

	s.notifier.Notify(EventSelectionBegin, map[string]interface{}{"display": position})

	data, err := s.beginSelection(ctx, position, req.Replace)
	if err != nil {
		utils.Warn("Selection on display %d aborted: %v", position, err)
		s.notifier.Notify(EventRegionScanCanceled, map[string]interface{}{})
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(data)
}

func (s *Service) checkDisplay(position int) error {
	displays, err := s.capturer.ListDisplays()
	if err != nil {
		return err
	}
	if position < 0 || position >= len(displays) {
		return fmt.Errorf("%w: %d (have %d)", screen.ErrDisplayNotFound, position, len(displays))
	}
	return nil
}

func (s *Service) beginSelection(ctx context.Context, position int, replace bool) (types.SelectionData, error) {
	if s.opts.HideDelay > 0 {
		select {
		case <-time.After(s.opts.HideDelay):
		case <-ctx.Done():
			return types.SelectionData{}, ctx.Err()
		}
	}

	captured, err := worker.Run(ctx, s.pool, func() (capturedDisplay, error) {
		d, frame, err := s.capturer.CaptureDisplay(position)
		if err != nil {
			return capturedDisplay{}, err
		}

		preview := []byte{}
		if !frame.Empty() {
			preview, err = utils.EncodeImage(frame.Image(), "png", 0)
			if err != nil {
				return capturedDisplay{}, fmt.Errorf("error encoding preview: %w", err)
			}
		}
		return capturedDisplay{display: d, frame: frame, preview: preview}, nil
	})
	if err != nil {
		return types.SelectionData{}, fmt.Errorf("error capturing display %d: %w", position, err)
	}

	next := session.New(captured.display, captured.frame, captured.preview)
	superseded, err := s.slot.Begin(next, replace)
	if err != nil {
		return types.SelectionData{}, err
	}
	if superseded != nil {
		utils.Info("Replaced selection session %s started at %s", superseded.ID, superseded.StartedAt.Format(time.RFC3339))
	}

	utils.Verbose("Selection session %s holds display %d frame %dx%d", next.ID, captured.display.Index, captured.frame.Width, captured.frame.Height)

	return types.SelectionData{
		SessionID: next.ID,
		Display:   captured.display.Index,
		Width:     captured.frame.Width,
		Height:    captured.frame.Height,
		Preview:   previewURL(captured.preview),
	}, nil
}

// SelectionPreviewCommand returns the preview of the held session without consuming it
func (s *Service) SelectionPreviewCommand() *CommandResponse {
	id, preview, err := s.slot.Preview()
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(types.PreviewData{
		SessionID: id,
		Preview:   previewURL(preview),
	})
}

// CompleteSelectionCommand consumes the held session, crops its frame to the
// region and decodes it. A decode failure is reported as no codes.
func (s *Service) CompleteSelectionCommand(ctx context.Context, req CompleteSelectionRequest) *CommandResponse {
	held, err := s.slot.Take()
	if err != nil {
		return NewErrorResponse(err)
	}

	s.notifier.Notify(EventSelectionEnd, map[string]interface{}{"sessionId": held.ID})

	cropped := screen.CropLogical(held.Display, held.Frame, req.Region)
	utils.Verbose("Session %s: region %s cropped to %dx%d", held.ID, req.Region, cropped.Width, cropped.Height)

	codes, err := s.decodeFrame(ctx, cropped)
	if err != nil {
		utils.Warn("Failed to scan region of session %s: %v", held.ID, err)
		codes = []scanner.Code{}
	}

	result := RegionScanResult{SessionID: held.ID, Codes: codes}
	s.notifier.Notify(EventRegionScanComplete, result)

	return NewSuccessResponse(result)
}

// CancelSelectionCommand drops the held session. Cancelling with no session
// held still notifies, so a UI that lost track of the session can recover.
func (s *Service) CancelSelectionCommand() *CommandResponse {
	err := s.slot.Cancel()
	switch {
	case errors.Is(err, session.ErrNoActiveSession):
		utils.Verbose("Cancel requested with no selection session held")
	case err != nil:
		return NewErrorResponse(err)
	}

	s.notifier.Notify(EventRegionScanCanceled, map[string]interface{}{})

	return NewSuccessResponse(map[string]interface{}{
		"message": "Selection cancelled",
	})
}

func previewURL(preview []byte) string {
	if len(preview) == 0 {
		return ""
	}
	return utils.DataURL("png", preview)
}
