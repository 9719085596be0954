package screen

import "errors"

var (
	// ErrNoDisplays is returned when the platform reports zero attached displays.
	ErrNoDisplays = errors.New("no displays found")

	// ErrCaptureFailed wraps a failed platform capture call.
	ErrCaptureFailed = errors.New("screen capture failed")

	// ErrBufferConversion means a raw pixel buffer did not match its declared dimensions.
	ErrBufferConversion = errors.New("pixel buffer does not match frame dimensions")

	// ErrDisplayNotFound is returned when a display index is out of range.
	ErrDisplayNotFound = errors.New("display not found")
)
