package core

// upload_limiter.go bounds the number of extractions running at once.
//
// Extraction is CPU bound, so uploads beyond the limit wait for a slot
// instead of competing for cores. A caller that cannot get a slot within
// maxWait fails with ErrTooManyUploads. WaitForDrain lets shutdown block
// until running uploads finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrTooManyUploads is returned when no upload slot frees up in time.
var ErrTooManyUploads = errors.New("too many concurrent uploads, please try again later")

// DefaultMaxConcurrentUploads is the default number of parallel extractions.
const DefaultMaxConcurrentUploads = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// drainPollInterval is how often WaitForDrain checks for idle.
const drainPollInterval = 50 * time.Millisecond

// UploadLimiter is a counting semaphore over extraction slots.
type UploadLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewUploadLimiter allows at most maxConcurrent simultaneous uploads.
// Non-positive arguments fall back to the defaults.
func NewUploadLimiter(maxConcurrent int, maxWait time.Duration) *UploadLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentUploads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &UploadLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. It returns ctx's error when
// ctx ends first and ErrTooManyUploads when the wait times out. Every
// successful Acquire must be paired with Release.
func (l *UploadLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	default:
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyUploads
	}
}

// Release returns a slot taken by Acquire.
func (l *UploadLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// ActiveCount returns the number of uploads holding a slot.
func (l *UploadLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// MaxConcurrent returns the slot count.
func (l *UploadLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// Available returns the number of free slots.
func (l *UploadLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no upload holds a slot or ctx ends.
func (l *UploadLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// UploadLimiterStatus is a snapshot of the limiter for monitoring.
type UploadLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *UploadLimiter) Status() UploadLimiterStatus {
	return UploadLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
