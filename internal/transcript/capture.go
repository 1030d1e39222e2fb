// Package transcript provides best-effort live task extraction from an
// in-progress capture. Candidates are preview only; the authoritative
// schedule comes from the planner call made after the capture finalizes.
package transcript

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/dayflow/internal/errors"
	"github.com/felixgeelhaar/dayflow/internal/log"
	"github.com/felixgeelhaar/dayflow/internal/planner"
)

// DefaultDebounce is the quiet period after the last appended text before an
// extraction call is made.
const DefaultDebounce = 500 * time.Millisecond

// Extractor is the planner operation the capture feed drives.
type Extractor interface {
	ExtractTasks(ctx context.Context, transcript string) ([]planner.TaskCandidate, error)
}

type captureState int

const (
	captureOpen captureState = iota
	captureFinalized
	captureCancelled
)

// Capture accumulates transcript text and debounces extraction calls.
// A newer transcript supersedes a pending one: there is a single timer
// handle, never more than one pending debounce.
type Capture struct {
	mu        sync.Mutex
	extractor Extractor
	logger    *log.Logger
	ctx       context.Context
	debounce  time.Duration

	state        captureState
	transcript   string
	candidates   []planner.TaskCandidate
	timer        *time.Timer
	gen          int
	onCandidates func([]planner.TaskCandidate)
}

// CaptureOption configures a Capture.
type CaptureOption func(*Capture)

// WithDebounce overrides the quiet period.
func WithDebounce(d time.Duration) CaptureOption {
	return func(c *Capture) { c.debounce = d }
}

// WithLogger sets the logger for extraction diagnostics.
func WithLogger(logger *log.Logger) CaptureOption {
	return func(c *Capture) { c.logger = logger }
}

// OnCandidates registers the preview listener, invoked after each
// successful extraction with the latest candidate list.
func OnCandidates(fn func([]planner.TaskCandidate)) CaptureOption {
	return func(c *Capture) { c.onCandidates = fn }
}

// NewCapture opens a capture session. ctx bounds every extraction call made
// during the session.
func NewCapture(ctx context.Context, extractor Extractor, opts ...CaptureOption) *Capture {
	c := &Capture{
		extractor: extractor,
		logger:    log.Default(),
		ctx:       ctx,
		debounce:  DefaultDebounce,
		state:     captureOpen,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append adds text to the accumulating transcript and resets the debounce
// window. A whitespace-only transcript clears the candidates without an
// extraction call.
func (c *Capture) Append(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != captureOpen {
		return errors.New(errors.ErrCodeSessionBadTransition, "capture session is closed")
	}

	c.transcript += text
	c.gen++

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	if strings.TrimSpace(c.transcript) == "" {
		c.candidates = nil
		if c.onCandidates != nil {
			go c.onCandidates(nil)
		}
		return nil
	}

	gen := c.gen
	c.timer = time.AfterFunc(c.debounce, func() { c.extract(gen) })
	return nil
}

// extract runs once the debounce window elapses. A stale generation means
// newer text arrived or the session closed; the call is dropped.
func (c *Capture) extract(gen int) {
	c.mu.Lock()
	if c.state != captureOpen || gen != c.gen {
		c.mu.Unlock()
		return
	}
	snapshot := c.transcript
	c.mu.Unlock()

	candidates, err := c.extractor.ExtractTasks(c.ctx, snapshot)
	if err != nil {
		// Best-effort feed: keep the previous preview on failure.
		c.logger.Warn("live extraction failed", "error", err.Error())
		return
	}

	c.mu.Lock()
	if c.state != captureOpen || gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.candidates = candidates
	cb := c.onCandidates
	c.mu.Unlock()

	if cb != nil {
		cb(candidates)
	}
}

// Candidates returns the latest preview list.
func (c *Capture) Candidates() []planner.TaskCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]planner.TaskCandidate{}, c.candidates...)
}

// Transcript returns the accumulated text so far.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// Finalize closes the capture normally and hands back the full transcript
// for the authoritative planner call. Any pending extraction is suppressed.
func (c *Capture) Finalize() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != captureOpen {
		return "", errors.New(errors.ErrCodeSessionBadTransition, "capture session is closed")
	}

	c.close(captureFinalized)
	return c.transcript, nil
}

// Cancel aborts the capture, discarding the partial transcript and
// suppressing any pending extraction callback.
func (c *Capture) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != captureOpen {
		return
	}

	c.close(captureCancelled)
	c.transcript = ""
	c.candidates = nil
}

// close must be called with the lock held.
func (c *Capture) close(state captureState) {
	c.state = state
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
