package commands

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/qrscan/scanner"
	"github.com/mobile-next/qrscan/screen"
	"github.com/mobile-next/qrscan/session"
	"github.com/mobile-next/qrscan/utils"
	"github.com/mobile-next/qrscan/worker"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// Events delivered to the UI layer during the selection workflow.
const (
	EventSelectionBegin     = "selection_begin"
	EventSelectionEnd       = "selection_end"
	EventRegionScanComplete = "region_scan_complete"
	EventRegionScanCanceled = "region_scan_cancelled"
)

// Notifier delivers workflow events to whatever UI is listening.
type Notifier interface {
	Notify(event string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, interface{}) {}

// Options tune the service.
type Options struct {
	// HideDelay is waited after EventSelectionBegin so the UI can hide itself
	// before the screen is captured.
	HideDelay time.Duration

	// Display is the default enumeration position captured by BeginSelection.
	Display int

	// CacheSize bounds the decode result cache; 0 disables it.
	CacheSize int
}

// Service implements every capture, selection and decode operation. Blocking
// work is dispatched to the worker pool.
type Service struct {
	capturer *screen.Capturer
	engine   *scanner.Engine
	pool     *worker.Pool
	slot     *session.Slot
	notifier Notifier
	cache    *lru.Cache[string, []scanner.Code]
	opts     Options
}

func NewService(source screen.ScreenSource, detector scanner.CodeDetector, pool *worker.Pool, notifier Notifier, opts Options) (*Service, error) {
	if source == nil {
		return nil, fmt.Errorf("screen source is required")
	}
	if detector == nil {
		return nil, fmt.Errorf("code detector is required")
	}
	if pool == nil {
		pool = worker.NewPool(0)
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}

	s := &Service{
		capturer: screen.NewCapturer(source),
		engine:   scanner.NewEngine(detector),
		pool:     pool,
		slot:     session.NewSlot(),
		notifier: notifier,
		opts:     opts,
	}

	if opts.CacheSize > 0 {
		cache, err := lru.New[string, []scanner.Code](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create decode cache: %w", err)
		}
		s.cache = cache
	}

	utils.Verbose("Service ready: %d worker slot(s), decode cache size %d", pool.Size(), opts.CacheSize)
	return s, nil
}
